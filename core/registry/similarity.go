package registry

// This file holds the pure string-similarity routines used by the semantic
// and cross-modal match tiers. They operate on runes so CJK names score the
// same as romanized ones.

// SequenceRatio returns a similarity ratio in [0,1] between two strings
// using Ratcliff/Obershelp sequence alignment: 2*M/T where M is the total
// size of all matching blocks and T is the combined length. Two empty
// strings are considered identical.
func SequenceRatio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)

	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}

	matches := matchingRunes(ar, br)
	return 2.0 * float64(matches) / float64(total)
}

// matchingRunes sums the sizes of all matching blocks by recursively
// splitting around the longest common block.
func matchingRunes(a, b []rune) int {
	i, j, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	matches := size
	matches += matchingRunes(a[:i], b[:j])
	matches += matchingRunes(a[i+size:], b[j+size:])
	return matches
}

// longestCommonBlock finds the longest common contiguous block between a
// and b, preferring the earliest occurrence on ties.
func longestCommonBlock(a, b []rune) (int, int, int) {
	bestI, bestJ, bestSize := 0, 0, 0

	lengths := make(map[int]int)
	for i := range a {
		next := make(map[int]int)
		for j := range b {
			if a[i] == b[j] {
				k := lengths[j-1] + 1
				next[j] = k
				if k > bestSize {
					bestI, bestJ, bestSize = i-k+1, j-k+1, k
				}
			}
		}
		lengths = next
	}

	return bestI, bestJ, bestSize
}

// LevenshteinDistance returns the edit distance between two strings,
// counted in runes.
func LevenshteinDistance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)

	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(br)]
}

// CharJaccard returns the Jaccard overlap of the rune sets of two strings.
// An empty union yields 0.
func CharJaccard(a, b string) float64 {
	setA := make(map[rune]struct{})
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{})
	for _, r := range b {
		setB[r] = struct{}{}
	}

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// NameScore combines sequence alignment, edit distance and character
// overlap into the score used by the semantic match tier.
func NameScore(a, b string) float64 {
	seqRatio := SequenceRatio(a, b)

	levRatio := 0.0
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen > 0 {
		levRatio = 1.0 - float64(LevenshteinDistance(a, b))/float64(maxLen)
	}

	jaccard := CharJaccard(a, b)

	return 0.5*seqRatio + 0.3*levRatio + 0.2*jaccard
}
