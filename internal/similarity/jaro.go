// internal/similarity/jaro.go
package similarity

import "strings"

// winklerPrefixScale is the standard Jaro-Winkler prefix weight.
const winklerPrefixScale = 0.1

// winklerMaxPrefix caps the common-prefix bonus at four runes.
const winklerMaxPrefix = 4

// JaroWinkler returns the Jaro-Winkler similarity of two strings in [0,1].
// It is symmetric, and 1.0 for equal non-empty strings. Empty input on either
// side scores 0 unless both sides are empty.
func JaroWinkler(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1.0
	}

	jaro := jaroSimilarity([]rune(a), []rune(b))
	if jaro == 0 {
		return 0
	}

	prefix := commonPrefixLen(a, b, winklerMaxPrefix)
	return jaro + float64(prefix)*winklerPrefixScale*(1.0-jaro)
}

func jaroSimilarity(r1, r2 []rune) float64 {
	len1, len2 := len(r1), len(r2)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	matchWindow := maxInt(len1, len2)/2 - 1
	if matchWindow < 0 {
		matchWindow = 0
	}

	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)

	matches := 0
	for i := 0; i < len1; i++ {
		lo := maxInt(0, i-matchWindow)
		hi := minInt(len2-1, i+matchWindow)
		for j := lo; j <= hi; j++ {
			if matched2[j] || r1[i] != r2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	// Count transpositions over the matched characters in order.
	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2.0
	return (m/float64(len1) + m/float64(len2) + (m-t)/m) / 3.0
}

func commonPrefixLen(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	n := minInt(minInt(len(ra), len(rb)), max)
	count := 0
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			break
		}
		count++
	}
	return count
}

// TokenOverlap computes word-set overlap between two strings:
// |words(x) ∩ words(y)| / max(|words(x)|, |words(y)|). Zero when either side
// has no words. Case-sensitive; callers lowercase first.
func TokenOverlap(x, y string) float64 {
	wordsX := strings.Fields(x)
	wordsY := strings.Fields(y)
	if len(wordsX) == 0 || len(wordsY) == 0 {
		return 0
	}

	setX := make(map[string]bool, len(wordsX))
	for _, w := range wordsX {
		setX[w] = true
	}
	setY := make(map[string]bool, len(wordsY))
	for _, w := range wordsY {
		setY[w] = true
	}

	common := 0
	for w := range setX {
		if setY[w] {
			common++
		}
	}

	return float64(common) / float64(maxInt(len(setX), len(setY)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
