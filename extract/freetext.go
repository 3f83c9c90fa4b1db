package extract

import (
	"regexp"
	"strings"
)

// freqPattern maps a recognized French frequency form to its canonical
// rendering; count patterns capture the leading number.
type freqPattern struct {
	re        *regexp.Regexp
	canonical string // "%s" is replaced with the captured count
}

var freqPatterns = []freqPattern{
	{regexp.MustCompile(`(?i)\b(\d+)\s*/\s*jour\b`), "%s/jour"},
	{regexp.MustCompile(`(?i)\b(\d+)\s*/\s*semaine\b`), "%s/semaine"},
	{regexp.MustCompile(`(?i)\b(\d+)\s*/\s*sem\b`), "%s/semaine"},
	{regexp.MustCompile(`(?i)\b(\d+)\s*x\s*par\s*jour\b`), "%s/jour"},
	{regexp.MustCompile(`(?i)\b(\d+)\s*fois\s*par\s*jour\b`), "%s/jour"},
	{regexp.MustCompile(`(?i)\bquotidien(ne)?\b`), "1/jour"},
}

var (
	freqSplit     = regexp.MustCompile(`(?i)(\d+\s*/\s*jour|\d+\s*/\s*semaine|\d+\s*x\s*par\s*jour|\d+\s*fois\s*par\s*jour|quotidien(ne)?)`)
	leadingNumber = regexp.MustCompile(`^\d+[\.\)-]\s*`)
	trailingPunct = regexp.MustCompile(`[\?\!]+$`)
)

// ParseFreeText extracts medication lines of the form "Paracétamol 1/jour" or
// "Amoxicilline 3 x par jour" from typed or OCR text. Lines without a
// recognizable frequency are skipped.
func ParseFreeText(text string) []Record {
	meds := []Record{}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if len(line) <= 2 {
			continue
		}

		freq := matchFrequency(line)
		if freq == "" {
			continue
		}

		name := line
		if loc := freqSplit.FindStringIndex(line); loc != nil {
			name = line[:loc[0]]
		}
		name = strings.Trim(name, " -•:\t")
		name = leadingNumber.ReplaceAllString(name, "")
		name = strings.TrimSpace(trailingPunct.ReplaceAllString(name, ""))
		if len(name) < 2 {
			continue
		}

		meds = append(meds, Record{Name: name, Frequency: freq})
	}

	return meds
}

func matchFrequency(line string) string {
	for _, p := range freqPatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if strings.Contains(p.canonical, "%s") && len(m) > 1 && m[1] != "" {
			return strings.Replace(p.canonical, "%s", m[1], 1)
		}
		return p.canonical
	}
	return ""
}
