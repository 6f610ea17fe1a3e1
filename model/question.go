package model

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
)

// QuestionType classifies how a question is answered
type QuestionType string

const (
	QuestionTypeSingle     QuestionType = "SINGLE"
	QuestionTypeMultiple   QuestionType = "MULTIPLE"
	QuestionTypeInteger    QuestionType = "INTEGER"
	QuestionTypeSubjective QuestionType = "SUBJECTIVE"
)

// QuestionDifficulty is the difficulty tier of a question
type QuestionDifficulty string

const (
	DifficultyBeginner     QuestionDifficulty = "BEGINNER"
	DifficultyIntermediate QuestionDifficulty = "INTERMEDIATE"
	DifficultyAdvanced     QuestionDifficulty = "ADVANCED"
)

// Answer holds one or more correct-answer values. It marshals as a bare
// string when single-valued and as an array for multi-select answers,
// and accepts either shape when decoding AI-produced JSON.
type Answer []string

// MarshalJSON implements json.Marshaler
func (a Answer) MarshalJSON() ([]byte, error) {
	switch len(a) {
	case 0:
		return json.Marshal("")
	case 1:
		return json.Marshal(a[0])
	default:
		return json.Marshal([]string(a))
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Answer) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*a = nil
		} else {
			*a = Answer{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = Answer(many)
	return nil
}

// IsEmpty reports whether no answer was determined
func (a Answer) IsEmpty() bool {
	return len(a) == 0
}

// String joins multi-select answers with a comma
func (a Answer) String() string {
	return strings.Join(a, ", ")
}

// ExtractedQuestion is the output unit of the extraction pipeline.
// Persisting it is the Question Store's job; the pipeline itself keeps
// no state beyond a single invocation.
type ExtractedQuestion struct {
	Text       string             `json:"text" validate:"required"`
	OptionA    *string            `json:"optionA"`
	OptionB    *string            `json:"optionB"`
	OptionC    *string            `json:"optionC"`
	OptionD    *string            `json:"optionD"`
	Correct    Answer             `json:"correct"`
	Difficulty QuestionDifficulty `json:"difficulty" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Type       QuestionType       `json:"type" validate:"omitempty,oneof=SINGLE MULTIPLE INTEGER SUBJECTIVE"`
	Solution   string             `json:"solution"`
	ExamTag    string             `json:"examTag"`
	HasDiagram bool               `json:"hasDiagram"`
}

// IsChoiceBased reports whether the question carries options
func (q *ExtractedQuestion) IsChoiceBased() bool {
	return q.Type == QuestionTypeSingle || q.Type == QuestionTypeMultiple
}

// Option returns the literal text of the option at the given letter
// (A-D), or "" when that option is absent.
func (q *ExtractedQuestion) Option(letter string) string {
	var opt *string
	switch strings.ToUpper(letter) {
	case "A":
		opt = q.OptionA
	case "B":
		opt = q.OptionB
	case "C":
		opt = q.OptionC
	case "D":
		opt = q.OptionD
	}
	if opt == nil {
		return ""
	}
	return *opt
}

// QuestionBlock is the segmenter's internal representation of one
// detected question. SequenceNumber, SectionName and IsWorkedExample
// exist only so the answer-key correlator can match a block to its
// answer; they are dropped before the block leaves the pipeline.
type QuestionBlock struct {
	ExtractedQuestion

	SequenceNumber  string
	SectionName     string
	IsWorkedExample bool
}

// AnswerKeyMap maps normalized section name -> sequence number -> raw
// answer token (letter, digit or T/F). Built once per document scan and
// read-only afterwards.
type AnswerKeyMap map[string]map[string]string

var validate = validator.New()

// SanitizeQuestions validates a question list at the pipeline boundary.
// AI-produced JSON is never trusted blindly: items with no text are
// dropped, enum fields are defaulted, and the option/type invariant is
// enforced by coercion (a choice question missing option A or B is
// reclassified as SUBJECTIVE; non-choice questions lose all options).
func SanitizeQuestions(questions []ExtractedQuestion) []ExtractedQuestion {
	out := make([]ExtractedQuestion, 0, len(questions))
	for _, q := range questions {
		q.Text = strings.TrimSpace(q.Text)
		if q.Difficulty == "" {
			q.Difficulty = DifficultyIntermediate
		}
		if q.Type == "" {
			if q.OptionA != nil && q.OptionB != nil {
				q.Type = QuestionTypeSingle
			} else {
				q.Type = QuestionTypeSubjective
			}
		}
		if err := validate.Struct(&q); err != nil {
			continue
		}
		if q.IsChoiceBased() && (q.OptionA == nil || q.OptionB == nil) {
			q.Type = QuestionTypeSubjective
		}
		if !q.IsChoiceBased() {
			q.OptionA, q.OptionB, q.OptionC, q.OptionD = nil, nil, nil, nil
		}
		out = append(out, q)
	}
	return out
}
