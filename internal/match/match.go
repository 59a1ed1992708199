// Package match scores similarity between candidate and existing records
// for duplicate detection. Name distance combines normalized edit distance
// with a phonetic-code boost; dates compare as overlapping ranges; a
// weighted composite ranks candidates.
package match

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Features holds per-field similarity scores in [0,1]. A nil pointer means
// the feature is absent; absent dates default to the neutral 0.5, every
// other absent feature defaults to 0.
type Features struct {
	Name         *float64
	Date         *float64
	Place        *float64
	Relationship *float64
}

// Candidate pairs an id and feature scores with optional caller data.
type Candidate struct {
	ID       string
	Features Features
	Data     any
	Score    float64
}

// Options tunes Rank.
type Options struct {
	MinScore float64 // defaults to 0.5 when <= 0
	Limit    int     // defaults to 5 when <= 0
}

var (
	nonLetter   = regexp.MustCompile(`[^a-z\s]`)
	spaces      = regexp.MustCompile(`\s+`)
	apostrophes = regexp.MustCompile("['’]")
	senSuffix   = regexp.MustCompile(`sen\b`)
	stripMarks  = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Feature wraps a score for use in Features.
func Feature(v float64) *float64 { return &v }

// ScoreName scores similarity of two personal names in [0,1]. Identical
// normalized names score 1; otherwise 1 - levenshtein/maxlen, boosted to
// at least 0.8 when both names share a soundex code.
func ScoreName(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}

	na := normalizeName(a)
	nb := normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	dist := levenshtein(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	score := 0.0
	if maxLen > 0 {
		score = 1 - float64(dist)/float64(maxLen)
	}

	sa := soundex(na)
	sb := soundex(nb)
	if sa != "" && sa == sb && score < 0.8 {
		score = 0.8
	}

	return clamp(score, 0, 1)
}

// ScoreDateOverlap scores two date strings by the day-inclusive overlap of
// their implied ranges divided by their union. Unparseable or absent dates
// are neutral (0.5); disjoint ranges score 0. A leading "~" marks an
// approximate date and widens the range by a precision-dependent pad.
func ScoreDateOverlap(a, b string) float64 {
	ra, okA := parseDateRange(a)
	rb, okB := parseDateRange(b)
	if !okA || !okB {
		return 0.5
	}

	overlapStart := maxInt(ra.start, rb.start)
	overlapEnd := minInt(ra.end, rb.end)
	if overlapEnd < overlapStart {
		return 0
	}

	overlap := overlapEnd - overlapStart + 1
	union := maxInt(ra.end, rb.end) - minInt(ra.start, rb.start) + 1
	return clamp(float64(overlap)/float64(union), 0, 1)
}

// CompositeScore combines features with weights name 0.4, date 0.25,
// place 0.25, relationship 0.1, clamped to [0,1].
func CompositeScore(f Features) float64 {
	name := featureValue(f.Name, 0)
	date := featureValue(f.Date, 0.5)
	place := featureValue(f.Place, 0)
	rel := featureValue(f.Relationship, 0)
	return clamp(name*0.4+date*0.25+place*0.25+rel*0.1, 0, 1)
}

// Rank scores each candidate, drops those below MinScore, and returns the
// top Limit sorted by descending score. Ties keep input order.
func Rank(candidates []Candidate, opts Options) []Candidate {
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = 0.5
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	var ranked []Candidate
	for _, c := range candidates {
		c.Score = CompositeScore(c.Features)
		if c.Score >= minScore {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func featureValue(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return clamp(*v, 0, 1)
}

func normalizeName(value string) string {
	s := strings.ToLower(value)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = apostrophes.ReplaceAllString(s, "")
	s = nonLetter.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "mc") {
		s = "mac" + s[2:]
	}
	s = senSuffix.ReplaceAllString(s, "son")
	return s
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(minInt(prev[j]+1, curr[j-1]+1), prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

var soundexCodes = map[byte]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// soundex builds a 4-character phonetic code: first letter plus up to three
// consonant-class digits, consecutive identical digits collapsed, zero
// padded. Vowels and h/w/y carry no digit and do not reset the run.
func soundex(value string) string {
	var letters []byte
	for i := 0; i < len(value); i++ {
		if value[i] >= 'a' && value[i] <= 'z' {
			letters = append(letters, value[i])
		}
	}
	if len(letters) == 0 {
		return ""
	}

	result := []byte{letters[0] - 'a' + 'A'}
	lastCode := soundexCodes[letters[0]]

	for i := 1; i < len(letters); i++ {
		code := soundexCodes[letters[i]]
		if code != 0 && code != lastCode {
			result = append(result, code)
		}
		if code != 0 {
			lastCode = code
		}
		if len(result) >= 4 {
			break
		}
	}

	for len(result) < 4 {
		result = append(result, '0')
	}
	return string(result)
}

type dayRange struct {
	start int // days since epoch, inclusive
	end   int
}

var (
	fullDate  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	monthDate = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	yearDate  = regexp.MustCompile(`^(\d{4})$`)
)

func parseDateRange(value string) (dayRange, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return dayRange{}, false
	}

	approximate := strings.HasPrefix(trimmed, "~")
	raw := trimmed
	if approximate {
		raw = strings.TrimSpace(trimmed[1:])
	}

	if m := fullDate.FindStringSubmatch(raw); m != nil {
		d := dayNumber(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]))
		return pad(dayRange{d, d}, approximate, 30), true
	}
	if m := monthDate.FindStringSubmatch(raw); m != nil {
		y, mo := atoi(m[1]), time.Month(atoi(m[2]))
		start := dayNumber(y, mo, 1)
		end := dayNumber(y, mo+1, 0) // day 0 of next month = last day of mo
		return pad(dayRange{start, end}, approximate, 90), true
	}
	if m := yearDate.FindStringSubmatch(raw); m != nil {
		y := atoi(m[1])
		return pad(dayRange{dayNumber(y, time.January, 1), dayNumber(y, time.December, 31)}, approximate, 365), true
	}

	return dayRange{}, false
}

func pad(r dayRange, approximate bool, days int) dayRange {
	if !approximate {
		return r
	}
	return dayRange{r.start - days, r.end + days}
}

func dayNumber(year int, month time.Month, day int) int {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return int(t.Unix() / 86400)
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
