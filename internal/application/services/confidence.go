package services

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	confidencePattern = regexp.MustCompile(`(?i)\[CONFIDENCE:\s*(\d+\.?\d*)\]`)
	confidenceMarker  = regexp.MustCompile(`(?i)\s*\[CONFIDENCE:\s*\d+\.?\d*\]`)
)

// ParseConfidence reads the in-band [CONFIDENCE: X.X] marker from text and
// returns the text with every marker removed. The score is clamped to [0,1].
// found is false when no parsable marker is present.
func ParseConfidence(text string) (clean string, confidence float64, found bool) {
	if m := confidencePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			confidence, found = clampConfidence(v), true
		}
	}
	clean = strings.TrimSpace(confidenceMarker.ReplaceAllString(text, ""))
	return clean, confidence, found
}

func clampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
