package gemini

import (
	"errors"
	"testing"
)

func TestNewKeyRotatorRejectsEmptyPool(t *testing.T) {
	if _, err := NewKeyRotator(nil); !errors.Is(err, ErrEmptyKeyPool) {
		t.Errorf("nil pool: expected ErrEmptyKeyPool, got %v", err)
	}
	if _, err := NewKeyRotator([]string{"", ""}); !errors.Is(err, ErrEmptyKeyPool) {
		t.Errorf("blank keys: expected ErrEmptyKeyPool, got %v", err)
	}
}

func TestKeyRotatorDropsBlankKeys(t *testing.T) {
	r, err := NewKeyRotator([]string{"", "key-a", "", "key-b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Size() != 2 {
		t.Errorf("expected pool size 2, got %d", r.Size())
	}
}

func TestKeyRotatorSingleKey(t *testing.T) {
	r, err := NewKeyRotator([]string{"only-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		if got := r.Next(); got != "only-key" {
			t.Fatalf("expected only-key, got %q", got)
		}
	}
}

func TestKeyRotatorCoversPool(t *testing.T) {
	keys := []string{"key-a", "key-b", "key-c"}
	r, err := NewKeyRotator(keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	valid := map[string]bool{}
	for _, k := range keys {
		valid[k] = true
	}

	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		k := r.Next()
		if !valid[k] {
			t.Fatalf("Next returned key outside pool: %q", k)
		}
		seen[k] = true
	}
	// 1000 uniform draws over 3 keys miss one with probability ~1e-176.
	if len(seen) != len(keys) {
		t.Errorf("expected all %d keys to be selected, saw %d", len(keys), len(seen))
	}
}

func TestKeyRotatorPoolIsCopied(t *testing.T) {
	keys := []string{"key-a"}
	r, err := NewKeyRotator(keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys[0] = "mutated"
	if got := r.Next(); got != "key-a" {
		t.Errorf("rotator observed caller mutation: got %q", got)
	}
}
