package tools

import (
	"fmt"
	"strings"

	"github.com/nrupatunga/fff.nvim/coordinator"
)

// FormatSearchResults formats a fuzzy_search_files response as
// human-readable text, highlighting the matched byte positions inline.
func FormatSearchResults(resp coordinator.SearchResponse) string {
	if len(resp.Items) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d of %d matches in %dms:\n\n",
		len(resp.Items), resp.TotalMatched, resp.QueryDurationMs))

	for _, item := range resp.Items {
		builder.WriteString(fmt.Sprintf("  %s  (%s, score=%d, git=%s)\n",
			highlightPositions(item.RelativePath, item.FuzzyPositions),
			formatFileSize(int64(item.Size)),
			item.TotalScore,
			item.GitStatus,
		))
	}

	return builder.String()
}

// highlightPositions brackets the byte offsets fuzzy_positions marks as
// having participated in the match, e.g. "[m]ain.go".
func highlightPositions(relativePath string, positions []int) string {
	if len(positions) == 0 {
		return relativePath
	}
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}
	var builder strings.Builder
	for i := 0; i < len(relativePath); i++ {
		if marked[i] {
			builder.WriteString("[")
			builder.WriteByte(relativePath[i])
			builder.WriteString("]")
		} else {
			builder.WriteByte(relativePath[i])
		}
	}
	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatDuration formats a duration in a human-readable way, matching the
// teacher's status-tool rendering.
func formatDuration(totalSeconds int) string {
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
