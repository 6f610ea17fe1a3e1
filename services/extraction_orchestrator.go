package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sahilchouksey/qbank-extract/model"
	"github.com/sahilchouksey/qbank-extract/services/gemini"
	"github.com/sahilchouksey/qbank-extract/utils"
)

// ErrEmptyResult is returned when a stage produced zero usable questions
var ErrEmptyResult = errors.New("extraction produced zero questions")

// CompletionClient is the slice of the AI service the extractor needs.
// *gemini.Client satisfies it; tests substitute a fake.
type CompletionClient interface {
	UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (*gemini.FileRef, error)
	DeleteFile(ctx context.Context, name string) error
	GenerateWithFile(ctx context.Context, model, prompt string, file *gemini.FileRef) (string, error)
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// TextSource extracts plain text from raw document bytes
type TextSource interface {
	ExtractText(data []byte) (string, error)
}

// ExtractorConfig tunes the extraction pipeline
type ExtractorConfig struct {
	NativeModels []string // S1 multimodal candidates, in preference order
	TextModels   []string // S2 text-only candidates
	RefineModels []string // S4 refinement candidates

	ChunkSize     int           // Questions per refinement call
	MaxConcurrent int           // Chunks in flight per refinement wave
	TimeBudget    time.Duration // Wall-clock cutoff for launching new waves

	Retry RetryConfig
}

// DefaultExtractorConfig returns production pipeline settings. The 45s
// budget leaves headroom under a 60s caller deadline.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		NativeModels:  []string{"gemini-1.5-flash-8b", "gemini-1.5-flash", "gemini-2.0-flash"},
		TextModels:    []string{"gemini-1.5-flash", "gemini-1.5-pro"},
		RefineModels:  []string{"gemini-1.5-flash", "gemini-1.5-pro"},
		ChunkSize:     4,
		MaxConcurrent: 6,
		TimeBudget:    45 * time.Second,
		Retry:         DefaultRetryConfig(),
	}
}

// StageErrors carries the last error from each attempted stage when the
// whole pipeline fails, so an operator can tell an unparseable document
// from an unreachable AI service.
type StageErrors struct {
	NativePDF error
	TextAI    error
	Regex     error
}

func (e *StageErrors) Error() string {
	return fmt.Sprintf("all extraction stages failed: native pdf: %v; text ai: %v; regex: %v",
		e.NativePDF, e.TextAI, e.Regex)
}

// QuestionExtractor turns a document into a question list by running
// fallback stages in order: native multimodal parse, text-only AI
// parse, deterministic segmentation, then concurrent AI refinement of
// the deterministic output.
type QuestionExtractor struct {
	ai     CompletionClient
	source TextSource
	config ExtractorConfig
	now    func() time.Time
}

// NewQuestionExtractor builds an extractor. Zero-valued config fields
// fall back to DefaultExtractorConfig values.
func NewQuestionExtractor(ai CompletionClient, source TextSource, config ExtractorConfig) *QuestionExtractor {
	defaults := DefaultExtractorConfig()
	if len(config.NativeModels) == 0 {
		config.NativeModels = defaults.NativeModels
	}
	if len(config.TextModels) == 0 {
		config.TextModels = defaults.TextModels
	}
	if len(config.RefineModels) == 0 {
		config.RefineModels = defaults.RefineModels
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = defaults.ChunkSize
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}
	if config.TimeBudget == 0 {
		config.TimeBudget = defaults.TimeBudget
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry = defaults.Retry
	}

	return &QuestionExtractor{
		ai:     ai,
		source: source,
		config: config,
		now:    time.Now,
	}
}

// Extract runs the full pipeline on raw document bytes. On success the
// result is non-empty and every item carries a provenance exam tag; on
// failure the error is a *StageErrors.
func (x *QuestionExtractor) Extract(ctx context.Context, data []byte, fileName string) ([]model.ExtractedQuestion, error) {
	start := x.now()
	stageErrs := &StageErrors{}

	// S1: native multimodal parse of the document itself
	questions, err := x.extractNativePDF(ctx, data, fileName)
	if err == nil {
		return questions, nil
	}
	stageErrs.NativePDF = err
	log.Printf("[Extractor] native pdf stage failed: %v", err)

	// S2 and S3 both work off locally extracted text
	text, textErr := x.source.ExtractText(data)
	if textErr != nil {
		stageErrs.TextAI = textErr
		stageErrs.Regex = textErr
		log.Printf("[Extractor] local text extraction failed: %v", textErr)
		return nil, stageErrs
	}

	// S2: text-only AI parse
	questions, err = x.extractFromText(ctx, text)
	if err == nil {
		return questions, nil
	}
	stageErrs.TextAI = err
	log.Printf("[Extractor] text ai stage failed: %v", err)

	// S3: deterministic segmentation plus answer-key correlation
	raw := finalizeBlocks(CorrelateAnswerKeys(text, SegmentText(text)))
	if len(raw) == 0 {
		stageErrs.Regex = ErrEmptyResult
		return nil, stageErrs
	}
	log.Printf("[Extractor] regex stage recovered %d questions", len(raw))

	// S4: concurrent AI refinement; failures degrade, never abort
	return x.refineQuestions(ctx, start, raw), nil
}

// extractNativePDF uploads the document and tries each multimodal model
// in order. A rate-limit error aborts the stage immediately: sibling
// models share the same quota bucket.
func (x *QuestionExtractor) extractNativePDF(ctx context.Context, data []byte, fileName string) ([]model.ExtractedQuestion, error) {
	file, err := x.ai.UploadFile(ctx, data, "application/pdf", fileName)
	if err != nil {
		return nil, fmt.Errorf("file upload failed: %w", err)
	}
	defer func() {
		if err := x.ai.DeleteFile(ctx, file.Name); err != nil {
			log.Printf("[Extractor] remote file cleanup failed: %v", err)
		}
	}()

	var lastErr error
	for _, modelName := range x.config.NativeModels {
		resp, err := x.ai.GenerateWithFile(ctx, modelName, nativePDFPrompt, file)
		if err != nil {
			lastErr = err
			if gemini.IsRateLimited(err) {
				break
			}
			continue
		}

		questions, err := parseQuestionList(resp)
		if err != nil {
			lastErr = err
			continue
		}
		log.Printf("[Extractor] native pdf parse succeeded with %s (%d questions)", modelName, len(questions))
		return questions, nil
	}
	return nil, lastErr
}

// extractFromText runs the text-only parse across the candidate models
func (x *QuestionExtractor) extractFromText(ctx context.Context, text string) ([]model.ExtractedQuestion, error) {
	if len(strings.TrimSpace(text)) < minExtractableText {
		return nil, fmt.Errorf("extracted text too short for ai parse (%d chars)", len(text))
	}
	prompt := textPrompt(text)

	var lastErr error
	for _, modelName := range x.config.TextModels {
		resp, err := x.ai.GenerateText(ctx, modelName, prompt)
		if err != nil {
			lastErr = err
			if gemini.IsRateLimited(err) {
				break
			}
			continue
		}

		questions, err := parseQuestionList(resp)
		if err != nil {
			lastErr = err
			continue
		}

		for i := range questions {
			if questions[i].ExamTag != "" {
				questions[i].ExamTag += " (Text Fallback)"
			} else {
				questions[i].ExamTag = "Text Fallback"
			}
		}
		log.Printf("[Extractor] text ai parse succeeded with %s (%d questions)", modelName, len(questions))
		return questions, nil
	}
	return nil, lastErr
}

// refineQuestions runs S4: the raw questions are split into fixed-size
// chunks and refined in concurrency-limited waves. Before each wave the
// elapsed time is checked against the budget; once exceeded, remaining
// chunks keep their raw content with a timed-out tag. Results are
// collected positionally, so output order always matches input order.
func (x *QuestionExtractor) refineQuestions(ctx context.Context, start time.Time, raw []model.ExtractedQuestion) []model.ExtractedQuestion {
	chunks := chunkQuestions(raw, x.config.ChunkSize)
	results := make([][]model.ExtractedQuestion, len(chunks))

	for wave := 0; wave < len(chunks); wave += x.config.MaxConcurrent {
		if x.now().Sub(start) > x.config.TimeBudget {
			log.Printf("[Extractor] time budget exceeded, keeping %d chunks raw", len(chunks)-wave)
			for j := wave; j < len(chunks); j++ {
				results[j] = tagQuestions(chunks[j], "Regex (Raw) - Timed Out")
			}
			break
		}

		end := wave + x.config.MaxConcurrent
		if end > len(chunks) {
			end = len(chunks)
		}

		var wg sync.WaitGroup
		for j := wave; j < end; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				results[j] = x.refineChunk(ctx, j, chunks[j])
			}(j)
		}
		wg.Wait()
	}

	out := make([]model.ExtractedQuestion, 0, len(raw))
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// refineChunk tries each refinement model with retries; on total
// failure the chunk keeps its raw content tagged with a sanitized
// error summary.
func (x *QuestionExtractor) refineChunk(ctx context.Context, id int, chunk []model.ExtractedQuestion) []model.ExtractedQuestion {
	prompt, err := refinePrompt(chunk)
	if err != nil {
		return tagQuestions(chunk, "Regex (Raw) - Err: "+sanitizeErrorSummary(err))
	}

	var lastErr error
	for _, modelName := range x.config.RefineModels {
		var refined []model.ExtractedQuestion
		err := RetryWithBackoff(ctx, x.config.Retry, func() error {
			resp, err := x.ai.GenerateText(ctx, modelName, prompt)
			if err != nil {
				return err
			}
			questions, err := parseQuestionList(resp)
			if err != nil {
				return err
			}
			refined = questions
			return nil
		})
		if err == nil {
			log.Printf("[Extractor] chunk %d refined with %s", id, modelName)
			return tagQuestions(refined, "Regex + AI Refined")
		}
		lastErr = err
	}

	log.Printf("[Extractor] chunk %d refinement failed, keeping raw: %v", id, lastErr)
	return tagQuestions(chunk, "Regex (Raw) - Err: "+sanitizeErrorSummary(lastErr))
}

// minExtractableText guards the text stages against scanned PDFs whose
// extraction yields nothing useful
const minExtractableText = 50

// parseQuestionList decodes a model response into a sanitized question
// list; zero surviving questions is an error so callers fall through to
// their next candidate.
func parseQuestionList(response string) ([]model.ExtractedQuestion, error) {
	var questions []model.ExtractedQuestion
	if err := utils.ExtractJSONTo(response, &questions); err != nil {
		return nil, err
	}
	questions = model.SanitizeQuestions(questions)
	if len(questions) == 0 {
		return nil, ErrEmptyResult
	}
	return questions, nil
}

// finalizeBlocks converts segmenter blocks into pipeline output:
// worked examples are dropped and the remaining questions validated
func finalizeBlocks(blocks []model.QuestionBlock) []model.ExtractedQuestion {
	questions := make([]model.ExtractedQuestion, 0, len(blocks))
	for _, b := range blocks {
		if b.IsWorkedExample {
			continue
		}
		questions = append(questions, b.ExtractedQuestion)
	}
	return model.SanitizeQuestions(questions)
}

// chunkQuestions splits questions into fixed-size chunks, last one short
func chunkQuestions(questions []model.ExtractedQuestion, size int) [][]model.ExtractedQuestion {
	var chunks [][]model.ExtractedQuestion
	for i := 0; i < len(questions); i += size {
		end := i + size
		if end > len(questions) {
			end = len(questions)
		}
		chunks = append(chunks, questions[i:end])
	}
	return chunks
}

// tagQuestions returns a copy of the questions with the exam tag set
func tagQuestions(questions []model.ExtractedQuestion, tag string) []model.ExtractedQuestion {
	out := make([]model.ExtractedQuestion, len(questions))
	for i, q := range questions {
		q.ExamTag = tag
		out[i] = q
	}
	return out
}

var bracketedRe = regexp.MustCompile(`\[.*?\]`)

// sanitizeErrorSummary condenses a provider error into a short tag
// suffix: bracketed payloads removed, truncated to 30 characters
func sanitizeErrorSummary(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(bracketedRe.ReplaceAllString(err.Error(), ""))
	// Truncate on runes so a multi-byte character at the boundary is
	// dropped whole instead of split.
	if runes := []rune(msg); len(runes) > 30 {
		msg = string(runes[:30])
	}
	return msg
}
