package trace

// ContextRange is a symmetric run of line numbers around a point of interest.
type ContextRange struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// RangeAround computes a symmetric line range of halfWidth lines on each side
// of line. StartLine never goes below 1; EndLine is unclamped here since the
// file length is unknown at parse time.
func RangeAround(line, halfWidth int) ContextRange {
	if halfWidth < 0 {
		halfWidth = 0
	}
	start := line - halfWidth
	if start < 1 {
		start = 1
	}
	return ContextRange{
		StartLine: start,
		EndLine:   line + halfWidth,
	}
}
