package recommend

import (
	"fmt"
	"strings"
)

// DefaultRatingCenter is the band center used when the user has no
// known rating.
const DefaultRatingCenter = 1200

// Band selects which difficulty range recommendations are drawn from,
// relative to the user's rating.
type Band int

const (
	BandEasy Band = iota
	BandModerate
	BandDifficult
)

var bandNames = map[Band]string{
	BandEasy:      "easy",
	BandModerate:  "moderate",
	BandDifficult: "difficult",
}

func (b Band) String() string {
	if name, ok := bandNames[b]; ok {
		return name
	}
	return fmt.Sprintf("band(%d)", int(b))
}

// ParseBand maps the API/CLI band name to a Band.
func ParseBand(s string) (Band, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "moderate":
		return BandModerate, nil
	case "easy":
		return BandEasy, nil
	case "difficult", "hard":
		return BandDifficult, nil
	}
	return BandModerate, fmt.Errorf("unknown band %q", s)
}

// TargetDifficulty returns the band's ideal difficulty for a rating.
func (b Band) TargetDifficulty(rating int) float64 {
	switch b {
	case BandEasy:
		return float64(rating - 200)
	case BandDifficult:
		return float64(rating + 200)
	default:
		return float64(rating)
	}
}

// ExcludeOption controls which already-seen problems are removed from
// recommendation candidates.
type ExcludeOption int

const (
	// DoNotExclude keeps every problem regardless of history.
	DoNotExclude ExcludeOption = iota
	// ExcludeOneWeek hides problems solved within the last 7 days.
	ExcludeOneWeek
	// ExcludeTwoWeeks hides problems solved within the last 14 days.
	ExcludeTwoWeeks
	// ExcludeFourWeeks hides problems solved within the last 28 days.
	ExcludeFourWeeks
	// ExcludeSixMonths hides problems solved within the last 180 days.
	ExcludeSixMonths
	// ExcludeSolved hides every problem the user has ever solved.
	ExcludeSolved
	// ExcludeSubmitted hides every problem the user has ever submitted to.
	ExcludeSubmitted
)

var excludeNames = map[ExcludeOption]string{
	DoNotExclude:     "none",
	ExcludeOneWeek:   "1week",
	ExcludeTwoWeeks:  "2weeks",
	ExcludeFourWeeks: "4weeks",
	ExcludeSixMonths: "6months",
	ExcludeSolved:    "solved",
	ExcludeSubmitted: "submitted",
}

func (o ExcludeOption) String() string {
	if name, ok := excludeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("exclude(%d)", int(o))
}

// ParseExcludeOption maps the API/CLI exclusion name to an ExcludeOption.
func ParseExcludeOption(s string) (ExcludeOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "solved":
		return ExcludeSolved, nil
	case "none":
		return DoNotExclude, nil
	case "1week":
		return ExcludeOneWeek, nil
	case "2weeks":
		return ExcludeTwoWeeks, nil
	case "4weeks":
		return ExcludeFourWeeks, nil
	case "6months":
		return ExcludeSixMonths, nil
	case "submitted":
		return ExcludeSubmitted, nil
	}
	return DoNotExclude, fmt.Errorf("unknown exclude option %q", s)
}
