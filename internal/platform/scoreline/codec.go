// Package scoreline is the one place that knows how predictions and
// points are encoded as text in the store: a score pair as "<home>:<away>"
// and points as a plain decimal string. Parse failures on points fall back
// to zero so a malformed row can never poison a sum or a comparison.
package scoreline

import (
	"fmt"
	"strconv"
	"strings"
)

type Outcome int

const (
	OutcomeAwayWin Outcome = -1
	OutcomeDraw    Outcome = 0
	OutcomeHomeWin Outcome = 1
)

func EncodeScore(home, away int) string {
	return strconv.Itoa(home) + ":" + strconv.Itoa(away)
}

// ParseScore decodes "<home>:<away>". Anything that is not exactly two
// non-negative integers is rejected.
func ParseScore(encoded string) (int, int, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed score %q: expected <home>:<away>", encoded)
	}

	home, err := parseNonNegative(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed score %q: %w", encoded, err)
	}
	away, err := parseNonNegative(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed score %q: %w", encoded, err)
	}

	return home, away, nil
}

// ParsePoints reads a text-encoded points value with a safe fallback of
// zero when the value does not parse.
func ParsePoints(encoded string) int {
	value, err := strconv.Atoi(strings.TrimSpace(encoded))
	if err != nil {
		return 0
	}
	return value
}

func ScoreOutcome(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHomeWin
	case home < away:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

func parseNonNegative(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("negative value %d", value)
	}
	return value, nil
}
