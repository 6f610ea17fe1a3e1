package gemini

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	withStatus := &APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"}
	if got := withStatus.Error(); got != "gemini API error (status 429 RESOURCE_EXHAUSTED): quota exceeded" {
		t.Errorf("unexpected message: %q", got)
	}

	withoutStatus := &APIError{StatusCode: 500, Message: "internal"}
	if got := withoutStatus.Error(); got != "gemini API error (status 500): internal" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestIsRateLimited(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"429 status code", &APIError{StatusCode: 429}, true},
		{"resource exhausted status", &APIError{StatusCode: 400, Status: "RESOURCE_EXHAUSTED"}, true},
		{"wrapped", fmt.Errorf("model call: %w", &APIError{StatusCode: 429}), true},
		{"other api error", &APIError{StatusCode: 404, Status: "NOT_FOUND"}, false},
		{"plain error", errors.New("429 somewhere in text"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := IsRateLimited(tc.err); got != tc.want {
			t.Errorf("%s: IsRateLimited = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"404 status code", &APIError{StatusCode: 404}, true},
		{"not found status", &APIError{StatusCode: 400, Status: "NOT_FOUND"}, true},
		{"wrapped", fmt.Errorf("model call: %w", &APIError{StatusCode: 404}), true},
		{"rate limit", &APIError{StatusCode: 429}, false},
		{"plain error", errors.New("not found"), false},
	}
	for _, tc := range cases {
		if got := IsNotFound(tc.err); got != tc.want {
			t.Errorf("%s: IsNotFound = %v, want %v", tc.name, got, tc.want)
		}
	}
}
