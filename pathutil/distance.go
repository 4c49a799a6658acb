package pathutil

import "strings"

// DistancePenalty scores how far candidatePath's directory is from
// currentFile's directory, as a non-positive integer in [-20, 0]. Files in
// the same directory as the currently open file incur no penalty; files
// that only share a common ancestor several levels up are penalized one
// point per level of divergence from that ancestor, capped at -20.
//
// currentFile of "" disables the penalty entirely (no file is open).
func DistancePenalty(currentFile, candidatePath string) int {
	if currentFile == "" {
		return 0
	}

	currentDir := Dir(currentFile)
	candidateDir := Dir(candidatePath)
	if currentDir == candidateDir {
		return 0
	}

	currentParts := splitNonEmpty(currentDir)
	candidateParts := splitNonEmpty(candidateDir)

	common := 0
	for common < len(currentParts) && common < len(candidateParts) && currentParts[common] == candidateParts[common] {
		common++
	}

	depthFromCommon := len(currentParts) - common
	if depthFromCommon == 0 {
		return 0
	}

	penalty := -depthFromCommon
	if penalty < -20 {
		penalty = -20
	}
	return penalty
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
