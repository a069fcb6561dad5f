package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/drawfeed/drawfeed/internal/draw"
	"github.com/drawfeed/drawfeed/internal/normalize"
)

// Strategy is one heuristic for pulling candidate records out of a page.
// Strategies are tried in order; the first one to yield records wins, so
// new site layouts can be added without touching the driver.
type Strategy interface {
	Name() string
	Extract(p *page) []draw.Candidate
}

// page carries the parsed document plus its plain-text reduction so each
// strategy does not re-derive them.
type page struct {
	doc   *goquery.Document
	lines []string
}

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}\s+[A-Za-z]{3,}\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\b`),
		regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`),
	}
	timePattern   = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	resultPattern = regexp.MustCompile(`(?i)result\s*[:\-]?\s*([A-Za-z0-9\- ]{2,})`)
	numberPattern = regexp.MustCompile(`\b\d{3}\b`)
	suffixPattern = regexp.MustCompile(`\b\d\b`)
	hasDigit      = regexp.MustCompile(`\d`)
)

// Content containers scanned by the fallback strategies, most specific
// first. Mirrors tend to wrap the result block in one of these.
var fallbackSelectors = []string{
	".latest-result", ".latest", ".result", ".results",
	"#latest-result", "#result", "#results",
	"main", "article", ".entry-content",
}

// headingDate returns the normalized date of the first date token on the
// line, or "" when the line is not a date heading. A token only counts as a
// heading when it normalizes to a real calendar date, which keeps phrases
// like "28 Results 2026" out of the section index.
func headingDate(line string) string {
	for _, pat := range datePatterns {
		tok := pat.FindString(line)
		if tok == "" {
			continue
		}
		if date := normalize.Date(tok); normalize.ValidDate(date) {
			return date
		}
	}
	return ""
}

// pairNumbers applies the numeric-pairing heuristic to a run of lines:
// 3-digit runs are numbers, lone digits are suffixes, paired positionally.
// A number with no suffix is emitted bare; extra suffixes are dropped.
func pairNumbers(lines []string) []string {
	var numbers, suffixes []string
	for _, line := range lines {
		numbers = append(numbers, numberPattern.FindAllString(line, -1)...)
		suffixes = append(suffixes, suffixPattern.FindAllString(line, -1)...)
	}
	out := make([]string, 0, len(numbers))
	for i, n := range numbers {
		if i < len(suffixes) {
			out = append(out, n+"-"+suffixes[i])
			continue
		}
		out = append(out, n)
	}
	return out
}

// dateSections extracts records from date-anchored sections: every line
// matching a date heading opens a section running to the next heading, and
// the numeric pairs inside it become that date's draws, in page order.
// Draw times come from the configured schedule since these layouts never
// publish per-draw times.
type dateSections struct {
	schedule normalize.Schedule
}

func (dateSections) Name() string { return "date-sections" }

func (s dateSections) Extract(p *page) []draw.Candidate {
	type heading struct {
		line int
		date string
	}
	var headings []heading
	for i, line := range p.lines {
		date := headingDate(line)
		if date == "" {
			continue
		}
		// Consecutive headings for the same date collapse into the
		// later occurrence so a section is never zero-length.
		if len(headings) > 0 {
			last := &headings[len(headings)-1]
			if last.date == date {
				last.line = i
				continue
			}
		}
		headings = append(headings, heading{line: i, date: date})
	}

	var out []draw.Candidate
	for i, h := range headings {
		end := len(p.lines)
		if i+1 < len(headings) {
			end = headings[i+1].line
		}
		payloads := pairNumbers(p.lines[h.line+1 : end])
		times := s.schedule.Times(len(payloads))
		for j, payload := range payloads {
			out = append(out, draw.Candidate{
				DrawDate:   h.date,
				DrawTime:   times[j],
				ResultText: payload,
			})
		}
	}
	return out
}

// labeledResult scans the fallback containers for the first non-empty text
// block and pulls a "Result: ..." payload out of it, with date and time
// matched independently from the same block.
type labeledResult struct{}

func (labeledResult) Name() string { return "labeled-result" }

func (labeledResult) Extract(p *page) []draw.Candidate {
	lines := firstBlock(p)
	if len(lines) == 0 {
		return nil
	}
	date := blockDate(lines)
	if date == "" {
		return nil
	}
	result := blockResult(lines)
	if result == "" {
		return nil
	}
	return []draw.Candidate{{
		DrawDate:   date,
		DrawTime:   blockTime(lines),
		ResultText: result,
	}}
}

// blockNumeric treats the first non-empty fallback block as a single
// section and applies the numeric-pairing heuristic to it.
type blockNumeric struct {
	schedule normalize.Schedule
}

func (blockNumeric) Name() string { return "block-numeric" }

func (s blockNumeric) Extract(p *page) []draw.Candidate {
	lines := firstBlock(p)
	if len(lines) == 0 {
		return nil
	}
	date := blockDate(lines)
	if date == "" {
		return nil
	}
	payloads := pairNumbers(lines)
	times := s.schedule.Times(len(payloads))
	out := make([]draw.Candidate, 0, len(payloads))
	for i, payload := range payloads {
		out = append(out, draw.Candidate{
			DrawDate:   date,
			DrawTime:   times[i],
			ResultText: payload,
		})
	}
	return out
}

func firstBlock(p *page) []string {
	for _, sel := range fallbackSelectors {
		block := p.doc.Find(sel)
		if block.Length() == 0 {
			continue
		}
		if lines := textLines(block.First()); len(lines) > 0 {
			return lines
		}
	}
	return nil
}

func blockDate(lines []string) string {
	for _, line := range lines {
		if date := headingDate(line); date != "" {
			return date
		}
	}
	return ""
}

func blockTime(lines []string) string {
	for _, line := range lines {
		if m := timePattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

func blockResult(lines []string) string {
	for _, line := range lines {
		if m := resultPattern.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	// No labeled payload: fall back to the first short line that carries
	// a digit but is not itself a date or time label.
	for _, line := range lines {
		if !hasDigit.MatchString(line) || len(line) > 50 {
			continue
		}
		lowered := strings.ToLower(line)
		if strings.Contains(lowered, "date") || strings.Contains(lowered, "time") {
			continue
		}
		return line
	}
	return ""
}
