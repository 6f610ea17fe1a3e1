package services

import (
	"regexp"
	"strings"

	"github.com/sahilchouksey/qbank-extract/model"
)

// Regexes for the deterministic document grammar. Worksheets in the
// wild are messy, so everything here is heuristic: a line-leading
// numbered token opens a question, a closed keyword vocabulary opens a
// section, and option/solution markers subdivide each block.
var (
	// questionStartRe matches "1.", "Q1.", "Question 4:", "Ex. 2", "Example 3." at line start.
	// Group 1 is the optional prefix, group 2 the printed sequence number.
	questionStartRe = regexp.MustCompile(`(?i)\n[ \t]*(?:(Q\.?|Question|Ex\.?|Example)[ \t]*)?(\d+)[ \t]*[.:][ \t]+`)

	// sectionHeaderRe matches a full line made of a section keyword plus
	// benign trailing text ("EXERCISE-02", "Comprehension # 1", "TRUE / FALSE")
	sectionHeaderRe = regexp.MustCompile(`(?im)^[ \t]*((?:Comprehension|Section|Part|Exercise|True[ \t]*/|Fill[ \t]*in|Match|Assertion|Subjective|Previous[ \t]*Year|Brain[ \t]*Teasers|Miscellaneous)[\w \t\-#./():]*)$`)

	// solutionMarkerRe finds the trailing worked-solution marker; everything
	// after it is solution text and must be cut away before option parsing
	// so "Sol. ..." can never be mistaken for a fourth option.
	solutionMarkerRe = regexp.MustCompile(`(?is)\n[ \t]*(?:Sol\.?|Solution|Ans\.?|Answer|Hint|Note|Explanation|Reason)[.:][ \t]*(.*)$`)

	// Letter-style options: "(A)", "A.", "A)" isolated by whitespace
	letterOptionStartRe = regexp.MustCompile(`(?:\s|^)(?:\([aA]\)|[aA]\.|[aA]\))(?:\s+|$)`)
	letterOptionSplitRe = regexp.MustCompile(`(?:\s|^)(?:\([a-dA-D]\)|[a-dA-D]\.|[a-dA-D]\))(?:\s+|$)`)

	// Numeric-style options: "(1)" or "1)" isolated by whitespace. The
	// leading question number can never match because the question-start
	// token (with its "." or ":") was already consumed.
	numericOptionStartRe = regexp.MustCompile(`(?:\s|^)\(?1\)(?:\s+|$)`)
	numericOptionSplitRe = regexp.MustCompile(`(?:\s|^)\(?[1-4]\)(?:\s+|$)`)

	// workedExamplePrefixRe flags "Ex"/"Example" question prefixes
	workedExamplePrefixRe = regexp.MustCompile(`(?i)^ex`)

	// noiseLineRe matches page headers/footers and filler lines that PDF
	// text extraction leaves behind inside question bodies
	noiseLineRe = regexp.MustCompile(`(?i)^[ \t]*(?:page[ \t]+\d+(?:[ \t]+of[ \t]+\d+)?|\d+[ \t]*\|[ \t]*page|space[ \t]+for[ \t]+rough[ \t]+work.*|[-_=]{3,})[ \t]*$`)
)

type sectionMark struct {
	pos  int
	name string
}

// SegmentText parses raw document text into question blocks using the
// deterministic grammar above. It is pure, performs no I/O, and never
// fails: unparseable input yields an empty slice. Blocks are returned
// in source order and every detected question start produces a block,
// even when no options or solution could be recovered.
func SegmentText(rawText string) []model.QuestionBlock {
	clean := strings.ReplaceAll(rawText, "\r\n", "\n")
	clean = strings.ReplaceAll(clean, "\t", " ")
	// Leading newline lets the question-start regex anchor a question
	// sitting at the very top of the document.
	clean = "\n" + clean

	sections := findSectionMarks(clean)
	keyZones := keyHeaderRe.FindAllStringIndex(clean, -1)

	// Answer-key entries ("1. B") look exactly like question starts, so
	// starts inside a key window are discarded.
	starts := questionStartRe.FindAllStringSubmatchIndex(clean, -1)
	kept := starts[:0]
	for _, m := range starts {
		if !inKeyZone(keyZones, m[0]) {
			kept = append(kept, m)
		}
	}
	starts = kept

	blocks := make([]model.QuestionBlock, 0, len(starts))
	for i, m := range starts {
		bodyStart := m[1]
		bodyEnd := len(clean)
		if i+1 < len(starts) {
			bodyEnd = starts[i+1][0]
		}

		prefix := ""
		if m[2] >= 0 {
			prefix = clean[m[2]:m[3]]
		}
		number := clean[m[4]:m[5]]
		section := sectionAt(sections, m[0])

		blocks = append(blocks, buildBlock(clean[bodyStart:bodyEnd], prefix, number, section))
	}

	return blocks
}

// inKeyZone reports whether a text offset falls inside an answer-key
// window: key header position plus the bounded keyWindowSize lookahead
func inKeyZone(zones [][]int, pos int) bool {
	for _, z := range zones {
		if pos >= z[0] && pos < z[0]+keyWindowSize {
			return true
		}
	}
	return false
}

// findSectionMarks returns every section header with its text offset,
// in document order
func findSectionMarks(text string) []sectionMark {
	matches := sectionHeaderRe.FindAllStringSubmatchIndex(text, -1)
	marks := make([]sectionMark, 0, len(matches))
	for _, m := range matches {
		marks = append(marks, sectionMark{
			pos:  m[0],
			name: strings.TrimSpace(text[m[2]:m[3]]),
		})
	}
	return marks
}

// sectionAt returns the nearest section header preceding the offset,
// or "General" when the question appears before any header
func sectionAt(marks []sectionMark, offset int) string {
	section := "General"
	for _, m := range marks {
		if m.pos >= offset {
			break
		}
		section = m.name
	}
	return section
}

// buildBlock parses one raw question body into a QuestionBlock
func buildBlock(body, prefix, number, section string) model.QuestionBlock {
	// The last question before an answer key would otherwise swallow the
	// key block into its options.
	if loc := keyHeaderRe.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}

	isExample := prefix != "" && workedExamplePrefixRe.MatchString(prefix)

	block := model.QuestionBlock{
		SequenceNumber:  number,
		SectionName:     section,
		IsWorkedExample: isExample,
	}
	block.Difficulty = model.DifficultyIntermediate
	switch {
	case isExample:
		block.ExamTag = "Solved Example"
	case section != "General":
		block.ExamTag = section
	default:
		block.ExamTag = "Regex Parsed"
	}

	// Split off the solution first; the leading newline re-anchors the
	// marker regex for a solution on the block's first line.
	work := "\n" + strings.TrimSpace(body)
	if m := solutionMarkerRe.FindStringSubmatchIndex(work); m != nil {
		block.Solution = strings.TrimSpace(work[m[2]:m[3]])
		work = work[:m[0]]
	}
	work = strings.TrimSpace(work)

	// Letter-style markers win over numeric-style when both could apply
	if loc := letterOptionStartRe.FindStringIndex(work); loc != nil {
		block.Text = stripNoiseLines(work[:loc[0]])
		assignOptions(&block.ExtractedQuestion, splitOptions(work[loc[0]:], letterOptionSplitRe))
		block.Type = model.QuestionTypeSingle
	} else if loc := numericOptionStartRe.FindStringIndex(work); loc != nil {
		block.Text = stripNoiseLines(work[:loc[0]])
		assignOptions(&block.ExtractedQuestion, splitOptions(work[loc[0]:], numericOptionSplitRe))
		block.Type = model.QuestionTypeSingle
	} else {
		block.Text = stripNoiseLines(work)
		block.Type = model.QuestionTypeSubjective
	}

	return block
}

// splitOptions splits an options region on the given marker family and
// returns up to four trimmed option strings in order
func splitOptions(region string, splitRe *regexp.Regexp) []string {
	parts := splitRe.Split(region, -1)
	options := make([]string, 0, 4)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		options = append(options, p)
		if len(options) == 4 {
			break
		}
	}
	return options
}

func assignOptions(q *model.ExtractedQuestion, options []string) {
	fields := []**string{&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD}
	for i, opt := range options {
		v := opt
		*fields[i] = &v
	}
}

// stripNoiseLines drops page headers/footers and filler lines
func stripNoiseLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if noiseLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
