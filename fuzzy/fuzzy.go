// Package fuzzy implements the typo-resistant matcher of §4.5: a
// subsequence scorer that rewards contiguous runs, path-segment
// boundaries, prefix matches, case matches, and camel/snake-case word
// boundaries, while tolerating a bounded number of single-character
// transpositions and insertions/deletions. It is hand-rolled rather than
// built on a library because no fuzzy-matching package in the reference
// pack exposes byte-position witnesses alongside a score, or a
// configurable typo budget — see DESIGN.md.
package fuzzy

import (
	"strings"
	"unicode"
)

// Result is the result of a successful fuzzy match: a score and the
// strictly increasing byte offsets into the haystack that participated.
type Result struct {
	Score     int
	Positions []int
	// Exact is true when the needle matched a contiguous run of the
	// haystack with no tolerated typos — a plain substring match.
	Exact bool
}

// Options tunes the matcher. Zero value uses sane defaults.
type Options struct {
	// MaxTypos bounds how many transpositions/insertions/deletions are
	// tolerated before a candidate is rejected outright.
	MaxTypos int
	// MinScore is the cutoff below which a match is treated as no match
	// at all, enabling early rejection in the ranker (§4.5).
	MinScore int
}

func (o Options) withDefaults() Options {
	if o.MaxTypos == 0 {
		o.MaxTypos = 2
	}
	return o
}

const (
	scorePerChar       = 16
	scoreConsecutive   = 14
	scorePrefixBonus   = 24
	scoreBoundaryBonus = 18
	scoreCaseMatch     = 4
	scoreCapitalBonus  = 8
	typoPenalty        = 10
	gapPenaltyPerByte  = 1
)

// Match runs the typo-resistant matcher of §4.5 against a single
// haystack (normally a relative path or one of its segments). Returns
// nil if no acceptable match exists, or if the needle is empty.
func Match(needle, haystack string, opts Options) *Result {
	opts = opts.withDefaults()
	if needle == "" {
		return nil
	}
	if haystack == "" {
		return nil
	}

	m := bestSubsequence(needle, haystack, opts.MaxTypos)
	if m == nil {
		return nil
	}
	if m.Score < opts.MinScore {
		return nil
	}
	return m
}

// bestSubsequence finds the highest scoring alignment of needle as an
// approximate subsequence of haystack, tolerating up to maxTypos
// character-level mismatches (a mismatch consumes one needle character
// against one haystack character without them being equal, standing in
// for a transposition or a single-character substitution).
//
// This is a bounded dynamic program over (needle index, haystack index,
// typos used), which keeps the typical path length (a handful of path
// segments, rarely more than a few hundred bytes) cheap while remaining
// exact rather than a greedy heuristic.
func bestSubsequence(needle, haystack string, maxTypos int) *Result {
	nRunes := []rune(needle)
	hRunes := []rune(haystack)
	n := len(nRunes)
	h := len(hRunes)
	if n == 0 || h == 0 || n > h+maxTypos {
		return nil
	}

	nLower := toLowerRunes(nRunes)
	hLower := toLowerRunes(hRunes)
	boundary := boundaryMask(hRunes)

	type cell struct {
		score     int
		prevI     int
		prevJ     int
		prevTypos int
		matched   bool
		valid     bool
	}

	// dp[i][j][t] = best cell having consumed i needle runes and j
	// haystack runes with t typos spent, ending with a decision at
	// (i-1, j-1).
	dp := make([][][]cell, n+1)
	for i := range dp {
		dp[i] = make([][]cell, h+1)
		for j := range dp[i] {
			dp[i][j] = make([]cell, maxTypos+1)
		}
	}
	for t := 0; t <= maxTypos; t++ {
		dp[0][0][t] = cell{score: 0, valid: true}
	}

	consecutiveRun := make([][][]int, n+1)
	for i := range consecutiveRun {
		consecutiveRun[i] = make([][]int, h+1)
		for j := range consecutiveRun[i] {
			consecutiveRun[i][j] = make([]int, maxTypos+1)
		}
	}

	best := cell{score: -1 << 30}
	bestI, bestJ, bestT := -1, -1, -1

	for j := 0; j <= h; j++ {
		for i := 0; i <= n; i++ {
			for t := 0; t <= maxTypos; t++ {
				cur := dp[i][j][t]
				if !cur.valid {
					continue
				}
				if i == n {
					if cur.score > best.score {
						best = cur
						bestI, bestJ, bestT = i, j, t
					}
					continue
				}
				if j == h {
					continue
				}

				exact := nLower[i] == hLower[j]
				isCaseMatch := exact && nRunes[i] == hRunes[j]

				// Option 1: consume a haystack rune without matching
				// (skip), i.e. the needle char stays pending.
				if jn := j + 1; jn <= h {
					skip := dp[i][jn][t]
					if !skip.valid || skip.score < cur.score {
						dp[i][jn][t] = cell{score: cur.score, prevI: i, prevJ: j, prevTypos: t, matched: false, valid: true}
						consecutiveRun[i][jn][t] = 0
					}
				}

				// Option 2: match needle[i] against haystack[j],
				// exactly or as a tolerated typo.
				if exact || t < maxTypos {
					run := 0
					if j > 0 {
						run = consecutiveRun[i][j][t]
					}
					gain := scorePerChar
					if run > 0 {
						gain += scoreConsecutive
					}
					if boundary[j] {
						gain += scoreBoundaryBonus
					}
					if j == 0 {
						gain += scorePrefixBonus
					}
					if isCaseMatch {
						gain += scoreCaseMatch
						if unicode.IsUpper(hRunes[j]) {
							gain += scoreCapitalBonus
						}
					}
					nt := t
					if !exact {
						gain -= typoPenalty
						nt = t + 1
					}

					cand := cur.score + gain
					nxt := dp[i+1][j+1][nt]
					if !nxt.valid || nxt.score < cand {
						dp[i+1][j+1][nt] = cell{score: cand, prevI: i, prevJ: j, prevTypos: t, matched: true, valid: true}
						consecutiveRun[i+1][j+1][nt] = run + 1
					}
				}
			}
		}
	}

	if bestI < 0 {
		return nil
	}

	// Walk back the chosen path to recover matched positions, then
	// convert rune indices to byte offsets.
	runePositions := make([]int, 0, n)
	i, j, t := bestI, bestJ, bestT
	for i > 0 || j > 0 {
		c := dp[i][j][t]
		if !c.valid {
			break
		}
		if c.matched {
			runePositions = append(runePositions, c.prevJ)
		}
		i, j, t = c.prevI, c.prevJ, c.prevTypos
	}
	for l, r := 0, len(runePositions)-1; l < r; l, r = l+1, r-1 {
		runePositions[l], runePositions[r] = runePositions[r], runePositions[l]
	}

	gapPenalty := (bestJ - len(runePositions)) * gapPenaltyPerByte
	finalScore := best.score - gapPenalty
	if finalScore < 0 {
		finalScore = 0
	}

	exact := bestT == 0 && len(runePositions) == n && isContiguous(runePositions)

	return &Result{
		Score:     finalScore,
		Positions: runeIndicesToByteOffsets(haystack, runePositions),
		Exact:     exact,
	}
}

func isContiguous(positions []int) bool {
	for i := 1; i < len(positions); i++ {
		if positions[i] != positions[i-1]+1 {
			return false
		}
	}
	return true
}

func toLowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// boundaryMask marks haystack runes that start a "word": the first
// character, anything after a path separator, anything after a
// non-alphanumeric separator (-, _, ., space), and the start of a
// camelCase hump (an uppercase letter following a lowercase one).
func boundaryMask(hRunes []rune) []bool {
	mask := make([]bool, len(hRunes))
	for i, r := range hRunes {
		if i == 0 {
			mask[i] = true
			continue
		}
		prev := hRunes[i-1]
		switch prev {
		case '/', '-', '_', '.', ' ':
			mask[i] = true
			continue
		}
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			mask[i] = true
		}
		if unicode.IsDigit(r) && !unicode.IsDigit(prev) {
			mask[i] = true
		}
	}
	return mask
}

func runeIndicesToByteOffsets(s string, runeIdx []int) []int {
	if len(runeIdx) == 0 {
		return nil
	}
	want := make(map[int]bool, len(runeIdx))
	for _, idx := range runeIdx {
		want[idx] = true
	}
	offsets := make([]int, 0, len(runeIdx))
	runeCount := 0
	for byteOffset, _ := range s {
		if want[runeCount] {
			offsets = append(offsets, byteOffset)
		}
		runeCount++
	}
	// A rune index equal to the rune count (one past the last rune) maps
	// to len(s); the range loop above only visits existing rune starts.
	if want[runeCount] {
		offsets = append(offsets, len(s))
	}
	return offsets
}

// MatchPathPieces implements §4.5's query-normalization rule: if the
// query contains a path separator, split it and match piecewise against
// path segments from right to left, each piece required to match within
// one segment, with an additional bonus for exercising the segment
// boundary. Returns nil if any piece fails to match.
func MatchPathPieces(query, relativePath string, opts Options) *Result {
	pieces := strings.Split(query, "/")
	segments := strings.Split(relativePath, "/")
	if len(pieces) > len(segments) {
		return nil
	}

	segByteStart := make([]int, len(segments))
	offset := 0
	for i, seg := range segments {
		segByteStart[i] = offset
		offset += len(seg) + 1
	}

	totalScore := 0
	allExact := true
	var allPositions []int
	segIdx := len(segments) - 1
	for p := len(pieces) - 1; p >= 0; p-- {
		piece := pieces[p]
		if piece == "" {
			continue
		}
		if segIdx < 0 {
			return nil
		}
		m := Match(piece, segments[segIdx], opts)
		if m == nil {
			return nil
		}
		totalScore += m.Score + scoreBoundaryBonus
		allExact = allExact && m.Exact
		for _, pos := range m.Positions {
			allPositions = append(allPositions, segByteStart[segIdx]+pos)
		}
		segIdx--
	}

	if len(allPositions) == 0 {
		return nil
	}
	sortInts(allPositions)
	return &Result{Score: totalScore, Positions: allPositions, Exact: allExact}
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
