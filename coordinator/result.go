package coordinator

import (
	"path"
	"strings"

	"github.com/nrupatunga/fff.nvim/fuzzy"
	"github.com/nrupatunga/fff.nvim/score"
)

// Components mirrors score.Breakdown for the optional debug-mode
// sub-record of §6's ResultItem.
type Components struct {
	Fuzzy            int             `json:"fuzzy"`
	PathBonus        int             `json:"path_bonus"`
	FrecencyBonus    int             `json:"frecency_bonus"`
	GitBonus         int             `json:"git_bonus"`
	CurrentFileBonus int             `json:"current_file_bonus"`
	ExactMatch       bool            `json:"exact_match"`
	MatchType        string          `json:"match_type"`
	Breadcrumb       []fuzzy.Segment `json:"breadcrumb,omitempty"`
}

// ResultItem is one ranked search hit, with the exact field set §6 names.
type ResultItem struct {
	AbsolutePath    string      `json:"absolute_path"`
	RelativePath    string      `json:"relative_path"`
	Name            string      `json:"name"`
	Extension       string      `json:"extension"`
	Size            uint64      `json:"size"`
	ModifiedSeconds int64       `json:"modified_seconds"`
	IsSymlink       bool        `json:"is_symlink"`
	GitStatus       string      `json:"git_status"`
	FrecencyScore   int64       `json:"frecency_score"`
	TotalScore      int         `json:"total_score"`
	FuzzyPositions  []int       `json:"fuzzy_positions"`
	Components      *Components `json:"components,omitempty"`
}

// SearchResponse is fuzzy_search_files's return shape (§6).
type SearchResponse struct {
	Items           []ResultItem
	TotalMatched    uint
	QueryDurationMs uint
}

func toResultItem(r score.Result, debug bool, query string) ResultItem {
	rec := r.Record
	item := ResultItem{
		AbsolutePath:    rec.AbsolutePath,
		RelativePath:    rec.RelativePath,
		Name:            rec.Name,
		Extension:       rec.Extension,
		Size:            rec.SizeBytes(),
		ModifiedSeconds: rec.ModifiedAt().Unix(),
		IsSymlink:       rec.IsSymlink(),
		GitStatus:       rec.GitStatus().String(),
		FrecencyScore:   rec.FrecencyScore(),
		TotalScore:      r.Score.Total,
		FuzzyPositions:  r.Positions,
	}
	if debug {
		item.Components = &Components{
			Fuzzy:            r.Score.Fuzzy,
			PathBonus:        r.Score.PathBonus,
			FrecencyBonus:    r.Score.FrecencyBonus,
			GitBonus:         r.Score.GitBonus,
			CurrentFileBonus: r.Score.CurrentFileBonus,
			ExactMatch:       r.Score.ExactMatch,
			MatchType:        r.Score.MatchType,
			Breadcrumb:       breadcrumbFor(rec.RelativePath, query),
		}
	}
	return item
}

// breadcrumbFor ranks the ancestor directory components of relPath by
// relevance to query, for debug mode's "which ancestor directories are
// relevant" display alongside the primary total_score.
func breadcrumbFor(relPath, query string) []fuzzy.Segment {
	dir := path.Dir(relPath)
	if dir == "." || dir == "/" {
		return nil
	}
	return fuzzy.RankSegments(query, strings.Split(dir, "/"))
}
