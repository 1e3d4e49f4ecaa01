package matching

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	setNumberPattern = regexp.MustCompile(`\b(\d{3,6})\b`)
	mocPattern       = regexp.MustCompile(`(?i)\bmoc\b`)
)

// Substring markers flagging non-authentic or otherwise unmatchable
// listings; titles carrying one never yield a set number.
var nonAuthenticMarkers = []string{
	"compatible",
	"compatibility",
	"clone",
	"custom",
	"block tech",
	"blocktech",
}

const (
	setNumberMin = 100
	setNumberMax = 99999
	yearMin      = 1990
	yearMax      = 2030
)

// ExtractSetNumber pulls a catalog set number out of a listing title.
// Bare 3-6 digit tokens qualify unless they read as a calendar year or
// fall outside the catalog range. Returns "" when the title has no
// usable number.
func ExtractSetNumber(title string) string {
	low := strings.ToLower(title)
	for _, marker := range nonAuthenticMarkers {
		if strings.Contains(low, marker) {
			return ""
		}
	}
	if mocPattern.MatchString(title) {
		return ""
	}
	for _, m := range setNumberPattern.FindAllStringSubmatch(title, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n < setNumberMin || n > setNumberMax {
			continue
		}
		if n >= yearMin && n <= yearMax {
			continue
		}
		return m[1]
	}
	return ""
}

var titleStopwords = map[string]bool{
	"lego":    true,
	"set":     true,
	"new":     true,
	"used":    true,
	"sealed":  true,
	"bnib":    true,
	"box":     true,
	"boxed":   true,
	"the":     true,
	"and":     true,
	"with":    true,
	"for":     true,
	"rare":    true,
	"retired": true,
	"genuine": true,
}

var wordPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// TitleKeywords derives up to four search terms from a listing title for
// the fuzzy candidate lookup: meaningful words plus any embedded number.
func TitleKeywords(title string) []string {
	words := wordPattern.FindAllString(strings.ToLower(title), -1)
	out := make([]string, 0, 4)
	for _, w := range words {
		if len(w) < 3 || titleStopwords[w] {
			continue
		}
		out = append(out, w)
		if len(out) == 4 {
			break
		}
	}
	return out
}
