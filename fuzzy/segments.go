package fuzzy

import (
	sahilmfuzzy "github.com/sahilm/fuzzy"
)

// Segment is one directory breadcrumb ranked by RankSegments.
type Segment struct {
	Text  string
	Score int
}

// RankSegments orders the directory components of a path breadcrumb by
// how well each matches query, for debug-mode display (§6's optional
// components sub-record) where a quick "which ancestor directories are
// relevant" ordering is wanted alongside the primary scorer. This is a
// secondary, display-only path: the core ranking in score.RankAndTruncate
// never calls it, since sahilm/fuzzy exposes neither byte-position
// witnesses nor a typo budget (see DESIGN.md).
func RankSegments(query string, segments []string) []Segment {
	if query == "" || len(segments) == 0 {
		return nil
	}

	matches := sahilmfuzzy.Find(query, segments)
	ranked := make([]Segment, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, Segment{Text: m.Str, Score: m.Score})
	}
	return ranked
}
