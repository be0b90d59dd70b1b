// Package fuzzy picks the registered name a mistyped option or command most
// likely meant. Typos are ranked by edit distance; abbreviations such as
// "vrbs" for "verbose" fall back to github.com/sahilm/fuzzy subsequence
// matching.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	sfuzzy "github.com/sahilm/fuzzy"
)

// minInput is the shortest typo worth guessing at.
const minInput = 2

// Option returns the long alias an unknown option token most likely meant,
// rendered as "--name", or "" when nothing is close. flag is the token as
// reported in the parse error, for example "--outpt" or "-x".
//
// One-letter aliases are never suggested, and a one-letter typo gets no
// suggestion: a single rune is within edit distance of almost anything.
func Option(flag string, aliases []string, maxDistance int) string {
	name := strings.TrimLeft(flag, "-")
	if utf8.RuneCountInString(name) == 1 {
		return ""
	}

	var long []string
	for _, alias := range aliases {
		if utf8.RuneCountInString(alias) > 1 {
			long = append(long, alias)
		}
	}
	if best := Closest(name, long, maxDistance); best != "" {
		return "--" + best
	}
	return ""
}

// Command returns the command alias name most likely meant, or "".
func Command(name string, aliases []string, maxDistance int) string {
	return Closest(name, aliases, maxDistance)
}

// Closest returns the candidate nearest to input within maxDistance edits,
// ignoring case. Ties go to the longer shared prefix, then to the
// alphabetically first name, so the answer does not depend on map order.
func Closest(input string, candidates []string, maxDistance int) string {
	if utf8.RuneCountInString(input) < minInput {
		return ""
	}

	var (
		best      string
		bestDist  = maxDistance + 1
		bestShare = -1
	)
	for _, c := range candidates {
		if c == input {
			continue
		}
		d := Distance(input, c, maxDistance)
		if d > maxDistance {
			continue
		}
		share := sharedPrefix(input, c)
		switch {
		case d < bestDist,
			d == bestDist && share > bestShare,
			d == bestDist && share == bestShare && c < best:
			best, bestDist, bestShare = c, d, share
		}
	}
	if best != "" {
		return best
	}
	return abbreviation(input, candidates)
}

// abbreviation returns the best candidate that starts with input's first
// character and contains the rest of input in order.
func abbreviation(input string, candidates []string) string {
	for _, m := range sfuzzy.Find(input, candidates) {
		if m.Str == input {
			continue
		}
		if len(m.MatchedIndexes) > 0 && m.MatchedIndexes[0] == 0 {
			return m.Str
		}
	}
	return ""
}

// Distance is the case-insensitive Levenshtein distance between a and b,
// counted in runes. Once the distance is known to exceed limit it returns
// limit+1 without finishing.
func Distance(a, b string, limit int) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if diff := len(ra) - len(rb); diff > limit || -diff > limit {
		return limit + 1
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := i
		for j := 1; j <= len(rb); j++ {
			sub := prev[j-1]
			if ra[i-1] != rb[j-1] {
				sub++
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, sub)
			rowMin = min(rowMin, cur[j])
		}
		if rowMin > limit {
			return limit + 1
		}
		prev, cur = cur, prev
	}
	return min(prev[len(rb)], limit+1)
}

func sharedPrefix(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
