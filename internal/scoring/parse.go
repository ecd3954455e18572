package scoring

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	ErrNoScore         = errors.New("oracle response contains no score")
	ErrScoreOutOfRange = errors.New("oracle score out of range")

	numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// ParseScore extracts the first number in text and rounds it to an integer
// score in [0,100].
func ParseScore(text string) (int, error) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, ErrNoScore
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoScore, err)
	}
	score := math.Round(f)
	if score < MinScore || score > MaxScore {
		return 0, fmt.Errorf("%w: %s", ErrScoreOutOfRange, match)
	}
	return int(score), nil
}
