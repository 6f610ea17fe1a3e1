package services

import (
	"encoding/json"
	"fmt"

	"github.com/sahilchouksey/qbank-extract/model"
)

// maxPromptTextChars caps how much extracted document text goes into a
// text-only prompt; anything past this is cut rather than risking an
// oversized request.
const maxPromptTextChars = 30000

const questionSchema = `[{
  "text": "Question text (LaTeX for math). Include values provided in the question.",
  "optionA": "Option A (or null if subjective)",
  "optionB": "Option B (or null)",
  "optionC": "Option C (or null)",
  "optionD": "Option D (or null)",
  "correct": "Answer option or the calculated value if subjective",
  "difficulty": "BEGINNER/INTERMEDIATE/ADVANCED",
  "type": "SINGLE/MULTIPLE/INTEGER/SUBJECTIVE",
  "solution": "Detailed solution/steps to reach the answer (LaTeX)",
  "examTag": "Exam Name",
  "hasDiagram": boolean
}]`

// nativePDFPrompt accompanies the uploaded document in a multimodal call
const nativePDFPrompt = `Extract ALL questions from this PDF into a JSON array, including:
1. Multiple Choice Questions (MCQs)
2. Solved Examples (Treat as questions with provided solutions)
3. Subjective / Numerical Problems (No options)

Strict JSON Schema:
` + questionSchema + `
Rules:
- Output JSON ONLY.
- If it's a Solved Example, the "solution" field is CRITICAL. Extract the full solution there.
- If no options are present, set type to "SUBJECTIVE" and options to null.
- Use LaTeX for ALL math.

Generative Repair:
- If the question text is incomplete or cut off, RECONSTRUCT it based on context.
- If NO solution is present in the text, YOU MUST GENERATE A DETAILED STEP-BY-STEP SOLUTION.
- If options are missing but the question is clearly Multiple Choice, generate plausible options or mark as SUBJECTIVE.
- Ensure all LaTeX is valid and properly escaped.`

// textPrompt wraps locally extracted document text for a text-only parse
func textPrompt(documentText string) string {
	if len(documentText) > maxPromptTextChars {
		documentText = documentText[:maxPromptTextChars]
	}
	return fmt.Sprintf(`I have extracted text from a PDF. Please parse ALL questions from it (MCQs, Examples, Subjective).
Text Content:
%s

Strict JSON Schema:
%s
Rules:
- Output JSON ONLY.
- Capture Solved Examples as questions.
- If no options, set type="SUBJECTIVE".
- Use LaTeX for math.

Generative Repair:
- If text is broken/incomplete, fix it.
- GENERATE A SOLUTION if one is missing from the source text.
- Ensure clear formatting.`, documentText, questionSchema)
}

// refinePrompt asks the model to clean up one chunk of raw questions
func refinePrompt(chunk []model.ExtractedQuestion) (string, error) {
	raw, err := json.Marshal(chunk)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chunk for refinement: %w", err)
	}
	return fmt.Sprintf(`Refine these specific questions.
Raw: %s
Strict JSON Schema:
%s
Rules: Output JSON ONLY.`, raw, questionSchema), nil
}
