package services

import (
	"regexp"
	"strings"

	"github.com/sahilchouksey/qbank-extract/model"
)

// keyWindowSize bounds how far past a key header the scan looks.
// Answer keys sit near the end of a document or section; an unbounded
// scan would start matching question numbering as answer pairs.
const keyWindowSize = 5000

var (
	// keyHeaderRe opens an answer-key block
	keyHeaderRe = regexp.MustCompile(`(?i)(?:CHECK YOUR GRASP|ANSWER KEY|BRAIN TEASERS)`)

	// Tabular keys print a row of question numbers over a row of tokens:
	//   Que  1  2  3
	//   Ans  B  A  D
	queLineRe = regexp.MustCompile(`(?im)^[ \t]*Que(?:stion)?s?\.?:?[ \t]+((?:\d+[ \t]*)+)$`)
	ansLineRe = regexp.MustCompile(`(?im)^[ \t]*Ans(?:wer)?s?\.?:?[ \t]+((?:[A-DTF1-4][ \t]*)+)$`)

	// answerPairRe extracts "1. B", "2: A,C", "3) True", "4) 2" pairs.
	// The trailing \b keeps "T" from matching the start of an ordinary
	// word and a digit token from matching the start of a longer number.
	answerPairRe = regexp.MustCompile(`(?i)(\d+)[ \t]*[.:)][ \t]*([A-D](?:[ \t]*,[ \t]*[A-D])*|True|False|T|F|[1-4])\b`)

	// answerTokenRe validates a condensed answer token
	answerTokenRe = regexp.MustCompile(`^(?:[A-D](?:,[A-D])*|TRUE|FALSE|T|F|[1-4])$`)

	sectionNoiseRe = regexp.MustCompile(`[^a-z0-9]+`)
	digitRunRe     = regexp.MustCompile(`[0-9]+`)
)

// normalizeSection canonicalizes a section name for map lookup:
// lowercase, everything but letters and digits removed, and leading
// zeros collapsed in each digit run, so "Exercise-05(A)" and
// "exercise 5 a" land on the same bucket.
func normalizeSection(name string) string {
	s := sectionNoiseRe.ReplaceAllString(strings.ToLower(name), "")
	return digitRunRe.ReplaceAllStringFunc(s, func(run string) string {
		trimmed := strings.TrimLeft(run, "0")
		if trimmed == "" {
			return "0"
		}
		return trimmed
	})
}

// ScanAnswerKeys builds a section-scoped answer-key map from raw
// document text. Returns an empty map when the document has no
// recognizable key block.
func ScanAnswerKeys(rawText string) model.AnswerKeyMap {
	keyMap := model.AnswerKeyMap{}

	for _, loc := range keyHeaderRe.FindAllStringIndex(rawText, -1) {
		end := loc[0] + keyWindowSize
		if end > len(rawText) {
			end = len(rawText)
		}
		window := rawText[loc[0]:end]

		// Inner section headers scope the key entries; entries before
		// the first header fall into "General".
		section := "General"
		last := 0
		for _, m := range sectionHeaderRe.FindAllStringSubmatchIndex(window, -1) {
			parseKeySegment(window[last:m[0]], section, keyMap)
			section = strings.TrimSpace(window[m[2]:m[3]])
			last = m[1]
		}
		parseKeySegment(window[last:], section, keyMap)
	}

	return keyMap
}

// parseKeySegment extracts sequenceNumber -> token entries from one
// section-scoped slice of a key window
func parseKeySegment(segment, section string, keyMap model.AnswerKeyMap) {
	entries := parseTabularKeys(segment)
	if entries == nil {
		entries = parsePairKeys(segment)
	}
	if len(entries) == 0 {
		return
	}

	norm := normalizeSection(section)
	bucket := keyMap[norm]
	if bucket == nil {
		bucket = map[string]string{}
		keyMap[norm] = bucket
	}
	for num, tok := range entries {
		bucket[num] = tok
	}
}

// parseTabularKeys zips a Que row with its Ans row positionally. It
// returns nil when the segment has no such rows, letting the caller
// fall back to pair parsing; a present-but-misaligned table (counts
// differing by more than 3) instead returns an empty map, because pair
// parsing over a number row would invent answers out of digits.
func parseTabularKeys(segment string) map[string]string {
	queMatch := queLineRe.FindStringSubmatch(segment)
	ansMatch := ansLineRe.FindStringSubmatch(segment)
	if queMatch == nil || ansMatch == nil {
		return nil
	}

	nums := strings.Fields(queMatch[1])
	toks := strings.Fields(ansMatch[1])
	diff := len(nums) - len(toks)
	if diff < -3 || diff > 3 {
		return map[string]string{}
	}

	n := len(nums)
	if len(toks) < n {
		n = len(toks)
	}
	entries := make(map[string]string, n)
	for i := 0; i < n; i++ {
		tok := strings.ToUpper(toks[i])
		if answerTokenRe.MatchString(tok) {
			entries[nums[i]] = tok
		}
	}
	return entries
}

// parsePairKeys extracts "number separator token" answer pairs
func parsePairKeys(segment string) map[string]string {
	entries := map[string]string{}
	for _, m := range answerPairRe.FindAllStringSubmatch(segment, -1) {
		tok := strings.ToUpper(strings.ReplaceAll(m[2], " ", ""))
		tok = strings.ReplaceAll(tok, "\t", "")
		if answerTokenRe.MatchString(tok) {
			entries[m[1]] = tok
		}
	}
	return entries
}

// CorrelateAnswerKeys resolves each block's correct answer from the
// document's answer key. It mutates the correct field on matched
// blocks and never adds or removes blocks. Worked examples carry their
// own inline solution and are skipped.
func CorrelateAnswerKeys(rawText string, blocks []model.QuestionBlock) []model.QuestionBlock {
	keyMap := ScanAnswerKeys(rawText)
	if len(keyMap) == 0 {
		return blocks
	}

	for i := range blocks {
		block := &blocks[i]
		if block.IsWorkedExample || block.SequenceNumber == "" {
			continue
		}

		bucket := lookupSection(keyMap, block.SectionName)
		if bucket == nil {
			continue
		}
		token, ok := bucket[block.SequenceNumber]
		if !ok {
			continue
		}
		block.Correct = resolveAnswer(token, &block.ExtractedQuestion)
	}

	return blocks
}

// lookupSection finds the key bucket for a section name: exact match
// first, then substring-fuzzy in both directions ("Comprehension # 1"
// matches a key section "Comprehension"), then the General bucket.
func lookupSection(keyMap model.AnswerKeyMap, sectionName string) map[string]string {
	if sectionName == "" {
		sectionName = "General"
	}
	norm := normalizeSection(sectionName)
	if bucket, ok := keyMap[norm]; ok {
		return bucket
	}
	for keySec, bucket := range keyMap {
		if strings.Contains(norm, keySec) || strings.Contains(keySec, norm) {
			return bucket
		}
	}
	return keyMap["general"]
}

// resolveAnswer turns a raw key token into the block's answer value.
// Letter and positional-digit tokens also carry the matched option's
// literal text so the stored answer reads without the option table.
func resolveAnswer(token string, q *model.ExtractedQuestion) model.Answer {
	// Tabular keys for numeric-style options use digits 1-4; they map
	// positionally onto options A-D.
	if len(token) == 1 && token[0] >= '1' && token[0] <= '4' {
		token = string(rune('A' + token[0] - '1'))
	}

	if len(token) == 1 && token[0] >= 'A' && token[0] <= 'D' {
		if opt := q.Option(token); opt != "" {
			return model.Answer{"(" + token + ") " + opt}
		}
		return model.Answer{"(" + token + ")"}
	}

	if strings.Contains(token, ",") {
		return model.Answer(strings.Split(token, ","))
	}

	// T/F and True/False stay as bare tokens
	return model.Answer{token}
}
