package model

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestAnswerMarshalShapes(t *testing.T) {
	cases := []struct {
		name   string
		answer Answer
		want   string
	}{
		{"empty", nil, `""`},
		{"single", Answer{"B"}, `"B"`},
		{"multi", Answer{"A", "C"}, `["A","C"]`},
	}
	for _, tc := range cases {
		got, err := json.Marshal(tc.answer)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if string(got) != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestAnswerUnmarshalShapes(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`"B"`), &a); err != nil {
		t.Fatalf("string form: %v", err)
	}
	if len(a) != 1 || a[0] != "B" {
		t.Errorf("string form: got %v", a)
	}

	if err := json.Unmarshal([]byte(`["A","C"]`), &a); err != nil {
		t.Fatalf("array form: %v", err)
	}
	if len(a) != 2 || a[0] != "A" || a[1] != "C" {
		t.Errorf("array form: got %v", a)
	}

	if err := json.Unmarshal([]byte(`""`), &a); err != nil {
		t.Fatalf("empty string: %v", err)
	}
	if !a.IsEmpty() {
		t.Errorf("empty string should decode to empty answer, got %v", a)
	}

	if err := json.Unmarshal([]byte(`42`), &a); err == nil {
		t.Error("expected error for numeric answer value")
	}
}

func TestSanitizeQuestionsDropsEmptyText(t *testing.T) {
	out := SanitizeQuestions([]ExtractedQuestion{
		{Text: "   "},
		{Text: "What is 2+2?"},
	})
	if len(out) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out))
	}
	if out[0].Text != "What is 2+2?" {
		t.Errorf("unexpected survivor: %q", out[0].Text)
	}
}

func TestSanitizeQuestionsDefaultsEnums(t *testing.T) {
	out := SanitizeQuestions([]ExtractedQuestion{
		{Text: "Pick one", OptionA: strPtr("1"), OptionB: strPtr("2")},
		{Text: "Explain gravity"},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(out))
	}
	if out[0].Type != QuestionTypeSingle {
		t.Errorf("optioned question: got type %s, want SINGLE", out[0].Type)
	}
	if out[1].Type != QuestionTypeSubjective {
		t.Errorf("optionless question: got type %s, want SUBJECTIVE", out[1].Type)
	}
	for i, q := range out {
		if q.Difficulty != DifficultyIntermediate {
			t.Errorf("question %d: got difficulty %s, want INTERMEDIATE", i, q.Difficulty)
		}
	}
}

func TestSanitizeQuestionsRejectsBadEnums(t *testing.T) {
	out := SanitizeQuestions([]ExtractedQuestion{
		{Text: "Bad difficulty", Difficulty: "IMPOSSIBLE"},
		{Text: "Bad type", Type: "ESSAY"},
	})
	if len(out) != 0 {
		t.Errorf("expected invalid enums to be dropped, got %d questions", len(out))
	}
}

func TestSanitizeQuestionsCoercesOptionInvariant(t *testing.T) {
	out := SanitizeQuestions([]ExtractedQuestion{
		{Text: "Choice missing option B", Type: QuestionTypeSingle, OptionA: strPtr("only A")},
		{Text: "Subjective with stray options", Type: QuestionTypeSubjective, OptionA: strPtr("x"), OptionC: strPtr("y")},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(out))
	}
	if out[0].Type != QuestionTypeSubjective {
		t.Errorf("incomplete choice question: got type %s, want SUBJECTIVE", out[0].Type)
	}
	if out[0].OptionA != nil {
		t.Error("reclassified question should have options cleared")
	}
	if out[1].OptionA != nil || out[1].OptionC != nil {
		t.Error("subjective question should have stray options cleared")
	}
}

func TestExtractedQuestionOption(t *testing.T) {
	q := ExtractedQuestion{OptionA: strPtr("first"), OptionC: strPtr("third")}
	if got := q.Option("a"); got != "first" {
		t.Errorf("Option(a) = %q", got)
	}
	if got := q.Option("C"); got != "third" {
		t.Errorf("Option(C) = %q", got)
	}
	if got := q.Option("B"); got != "" {
		t.Errorf("Option(B) = %q, want empty", got)
	}
	if got := q.Option("Z"); got != "" {
		t.Errorf("Option(Z) = %q, want empty", got)
	}
}
