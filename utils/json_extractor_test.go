package utils

import (
	"errors"
	"testing"
)

func TestExtractJSONPlainObject(t *testing.T) {
	got, err := ExtractJSON(`{"name": "test"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"name": "test"}` {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestExtractJSONMarkdownFence(t *testing.T) {
	input := "Here is the result:\n```json\n[{\"id\": 1}]\n```\nLet me know if you need more."
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `[{"id": 1}]` {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestExtractJSONFenceWithoutLanguage(t *testing.T) {
	got, err := ExtractJSON("```\n{\"ok\": true}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"ok": true}` {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestExtractJSONEmbeddedInProse(t *testing.T) {
	input := `Sure! The extracted questions are [{"question": "What is 2+2?"}] as requested.`
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `[{"question": "What is 2+2?"}]` {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestExtractJSONNestedBracketsInStrings(t *testing.T) {
	input := `prefix {"text": "options are {a} and [b]", "n": 1} suffix`
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"text": "options are {a} and [b]", "n": 1}` {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestExtractJSONEscapedQuotes(t *testing.T) {
	input := `{"text": "she said \"hello {world}\""}`
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestExtractJSONNoPayload(t *testing.T) {
	for _, input := range []string{"", "just some prose", "{broken", "[1, 2"} {
		if _, err := ExtractJSON(input); !errors.Is(err, ErrNoJSONFound) {
			t.Errorf("input %q: expected ErrNoJSONFound, got %v", input, err)
		}
	}
}

func TestExtractJSONTo(t *testing.T) {
	var target []struct {
		ID int `json:"id"`
	}
	input := "```json\n[{\"id\": 7}, {\"id\": 8}]\n```"
	if err := ExtractJSONTo(input, &target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(target) != 2 || target[0].ID != 7 || target[1].ID != 8 {
		t.Errorf("unexpected decode result: %+v", target)
	}
}

func TestExtractJSONToTypeMismatch(t *testing.T) {
	var target []int
	if err := ExtractJSONTo(`{"a": 1}`, &target); err == nil {
		t.Fatal("expected unmarshal error for mismatched shape")
	}
}
