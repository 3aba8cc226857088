package corpus

import (
	"sort"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// TokenSetRatio scores the similarity of two titles on a 0–100 scale.
// Titles are lowercased and segmented into unique word sets, so the score is
// insensitive to word order, case, and punctuation. The score is the best
// pairwise ratio among the joined intersection, intersection+onlyA, and
// intersection+onlyB strings: titles whose word sets are equal score 100, a
// set containing the other with a non-empty overlap also scores 100, and the
// score degrades with the weight of non-shared words.
func TokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inB := make(map[string]bool, len(tb))
	for _, t := range tb {
		inB[t] = true
	}
	inA := make(map[string]bool, len(ta))
	for _, t := range ta {
		inA[t] = true
	}

	// ta and tb are sorted, so the partitions stay sorted.
	var inter, onlyA, onlyB []string
	for _, t := range ta {
		if inB[t] {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range tb {
		if !inA[t] {
			onlyB = append(onlyB, t)
		}
	}

	s0 := strings.Join(inter, " ")
	s1 := joinParts(inter, onlyA)
	s2 := joinParts(inter, onlyB)

	return max(indelRatio(s0, s1), indelRatio(s0, s2), indelRatio(s1, s2))
}

// tokenSet segments s into its unique lowercase words, sorted. Tokens with
// no letter or digit (bare punctuation) are discarded.
func tokenSet(s string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	iter := words.FromString(strings.ToLower(s))
	for iter.Next() {
		tok := iter.Value()
		if !hasAlnum(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func joinParts(head, tail []string) string {
	if len(tail) == 0 {
		return strings.Join(head, " ")
	}
	if len(head) == 0 {
		return strings.Join(tail, " ")
	}
	return strings.Join(head, " ") + " " + strings.Join(tail, " ")
}

// indelRatio is the normalized insert/delete similarity of two strings on a
// 0–100 scale: 200·LCS(a,b) / (len(a)+len(b)).
func indelRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	l := lcsLen(ra, rb)
	return 200 * float64(l) / float64(len(ra)+len(rb))
}

// lcsLen computes the longest-common-subsequence length with a two-row DP.
// Titles are short, so the quadratic cost is irrelevant.
func lcsLen(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
