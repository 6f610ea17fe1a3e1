package services

import (
	"testing"

	"github.com/sahilchouksey/qbank-extract/model"
)

func TestCorrelateTabularKey(t *testing.T) {
	input := "1. What is 2+2?\n(A) 3\n(B) 4\n(C) 5\n(D) 6\nSol. Add them.\n2. What is 3+3?\n(A) 5\n(B) 6\nAnswer Key\nQue 1 2\nAns B A"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if got := blocks[0].Correct.String(); got != "(B) 4" {
		t.Errorf("block 1 correct = %q, want %q", got, "(B) 4")
	}
	if got := blocks[1].Correct.String(); got != "(A) 5" {
		t.Errorf("block 2 correct = %q, want %q", got, "(A) 5")
	}
}

func TestCorrelatePairKeys(t *testing.T) {
	input := "1. Pick one.\n(A) w (B) x (C) y (D) z\n2. Pick another.\n(A) p (B) q (C) r (D) s\nANSWER KEY\n1. C\n2. A"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if got := blocks[0].Correct.String(); got != "(C) y" {
		t.Errorf("block 1 correct = %q", got)
	}
	if got := blocks[1].Correct.String(); got != "(A) p" {
		t.Errorf("block 2 correct = %q", got)
	}
}

func TestCorrelateSectionScoping(t *testing.T) {
	input := "EXERCISE-01\n1. First section question.\n(A) a (B) b (C) c (D) d\n" +
		"EXERCISE-02\n1. Second section question.\n(A) e (B) f (C) g (D) h\n" +
		"ANSWER KEY\nEXERCISE-01\n1. B\nEXERCISE-02\n1. D"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if got := blocks[0].Correct.String(); got != "(B) b" {
		t.Errorf("exercise 1 correct = %q", got)
	}
	if got := blocks[1].Correct.String(); got != "(D) h" {
		t.Errorf("exercise 2 correct = %q", got)
	}
}

func TestCorrelateFuzzySectionMatch(t *testing.T) {
	// Question section "Comprehension # 1" should find key section "Comprehension"
	input := "Comprehension # 1\n1. Passage question?\n(A) m (B) n (C) o (D) p\n" +
		"ANSWER KEY\nComprehension\n1. C"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if got := blocks[0].Correct.String(); got != "(C) o" {
		t.Errorf("correct = %q", got)
	}
}

func TestCorrelateTrueFalseAndMultiSelect(t *testing.T) {
	input := "True / False\n1. The sky is green.\n2. Water boils at 100C.\n" +
		"Match the following\n3. Select all primes.\n(A) 2 (B) 3 (C) 4 (D) 6\n" +
		"ANSWER KEY\n1. F\n2. T\n3. A,B"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if got := blocks[0].Correct.String(); got != "F" {
		t.Errorf("block 1 correct = %q", got)
	}
	if got := blocks[1].Correct.String(); got != "T" {
		t.Errorf("block 2 correct = %q", got)
	}
	if got := len(blocks[2].Correct); got != 2 {
		t.Fatalf("block 3 correct has %d values: %v", got, blocks[2].Correct)
	}
	if blocks[2].Correct[0] != "A" || blocks[2].Correct[1] != "B" {
		t.Errorf("block 3 correct = %v", blocks[2].Correct)
	}
}

func TestCorrelateSkipsWorkedExamples(t *testing.T) {
	input := "Ex. 1: Solved already.\nSol. Done.\n" +
		"ANSWER KEY\n1. A"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].Correct.IsEmpty() {
		t.Errorf("worked example got answer %v", blocks[0].Correct)
	}
}

func TestCorrelateNoKeyBlockLeavesBlocksUntouched(t *testing.T) {
	input := "1. No key anywhere.\n(A) a (B) b"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].Correct.IsEmpty() {
		t.Errorf("correct = %v, want empty", blocks[0].Correct)
	}
}

func TestCorrelateRejectsMisalignedTable(t *testing.T) {
	// Que and Ans token counts differ by more than 3; nothing usable
	input := "1. Q one.\n(A) a (B) b\n" +
		"ANSWER KEY\nQue 1 2 3 4 5 6 7 8\nAns B A"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if !blocks[0].Correct.IsEmpty() {
		t.Errorf("misaligned table produced answer %v", blocks[0].Correct)
	}
}

func TestCorrelateRejectsWordStartingWithT(t *testing.T) {
	// "1. Two" must not parse as answer token "T"
	input := "1. Count them.\n(A) a (B) b\nANSWER KEY\n1. Two of them"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if !blocks[0].Correct.IsEmpty() {
		t.Errorf("prose parsed as answer: %v", blocks[0].Correct)
	}
}

func TestNormalizeSection(t *testing.T) {
	if normalizeSection("EXERCISE-01") != normalizeSection("Exercise 01") {
		t.Error("hyphen/space variants should normalize identically")
	}
	if normalizeSection("Comprehension # 1") != "comprehension1" {
		t.Errorf("got %q", normalizeSection("Comprehension # 1"))
	}
	if got := normalizeSection("Exercise-05(A)"); got != "exercise5a" {
		t.Errorf("zero-padded/parenthesized form = %q, want %q", got, "exercise5a")
	}
	if normalizeSection("Exercise-05(A)") != normalizeSection("exercise 5 a") {
		t.Error("zero-padded and unpadded variants should normalize identically")
	}
	if got := normalizeSection("Exercise 10"); got != "exercise10" {
		t.Errorf("non-padded digits mangled: %q", got)
	}
}

func TestCorrelateZeroPaddedSectionHeader(t *testing.T) {
	input := "Exercise 5\n" +
		"1. Count the dots.\n" +
		"(A) one (B) two\n\n" +
		"ANSWER KEY\n" +
		"Exercise-05\n" +
		"1. B\n"

	blocks := CorrelateAnswerKeys(input, SegmentText(input))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if got := blocks[0].Correct.String(); got != "(B) two" {
		t.Errorf("zero-padded key section not matched: correct = %q", got)
	}
}

func TestParsePairKeysDigitTokens(t *testing.T) {
	keyMap := ScanAnswerKeys("ANSWER KEY\n1) 3\n2) 1\n")
	bucket := keyMap["general"]
	if bucket == nil {
		t.Fatal("no general bucket")
	}
	if bucket["1"] != "3" || bucket["2"] != "1" {
		t.Errorf("bucket = %v", bucket)
	}

	// A longer number is not a digit token
	keyMap = ScanAnswerKeys("ANSWER KEY\n1) 12\n")
	if bucket := keyMap["general"]; bucket != nil && bucket["1"] != "" {
		t.Errorf("multi-digit value parsed as answer: %v", bucket)
	}
}

func TestScanAnswerKeysNumericTokens(t *testing.T) {
	keyMap := ScanAnswerKeys("ANSWER KEY\nQue 1 2\nAns 3 1")
	bucket := keyMap["general"]
	if bucket == nil {
		t.Fatal("no general bucket")
	}
	if bucket["1"] != "3" || bucket["2"] != "1" {
		t.Errorf("bucket = %v", bucket)
	}

	q := model.ExtractedQuestion{}
	c := "ten"
	q.OptionC = &c
	if got := resolveAnswer("3", &q).String(); got != "(C) ten" {
		t.Errorf("positional digit resolution = %q", got)
	}
}
