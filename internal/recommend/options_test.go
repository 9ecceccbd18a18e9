package recommend

import (
	"testing"

	"probrowse/pkg/testutil"
)

func TestParseBand(t *testing.T) {
	cases := []struct {
		input string
		want  Band
	}{
		{"", BandModerate},
		{"easy", BandEasy},
		{"moderate", BandModerate},
		{"difficult", BandDifficult},
		{"hard", BandDifficult},
		{"  Difficult ", BandDifficult},
	}
	for _, tc := range cases {
		got, err := ParseBand(tc.input)
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, got, tc.want)
	}

	if _, err := ParseBand("impossible"); err == nil {
		t.Fatal("expected error for unknown band")
	}
}

func TestBandTargetDifficulty(t *testing.T) {
	testutil.AssertEqual(t, BandEasy.TargetDifficulty(1500), float64(1300))
	testutil.AssertEqual(t, BandModerate.TargetDifficulty(1500), float64(1500))
	testutil.AssertEqual(t, BandDifficult.TargetDifficulty(1500), float64(1700))
}

func TestParseExcludeOption(t *testing.T) {
	cases := []struct {
		input string
		want  ExcludeOption
	}{
		{"", ExcludeSolved},
		{"none", DoNotExclude},
		{"1week", ExcludeOneWeek},
		{"2weeks", ExcludeTwoWeeks},
		{"4weeks", ExcludeFourWeeks},
		{"6months", ExcludeSixMonths},
		{"solved", ExcludeSolved},
		{"submitted", ExcludeSubmitted},
	}
	for _, tc := range cases {
		got, err := ParseExcludeOption(tc.input)
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, got, tc.want)
	}

	if _, err := ParseExcludeOption("yesterday"); err == nil {
		t.Fatal("expected error for unknown exclude option")
	}
}

func TestOptionNamesRoundTrip(t *testing.T) {
	for _, b := range []Band{BandEasy, BandModerate, BandDifficult} {
		parsed, err := ParseBand(b.String())
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, parsed, b)
	}
	for _, o := range []ExcludeOption{
		DoNotExclude, ExcludeOneWeek, ExcludeTwoWeeks,
		ExcludeFourWeeks, ExcludeSixMonths, ExcludeSolved, ExcludeSubmitted,
	} {
		parsed, err := ParseExcludeOption(o.String())
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, parsed, o)
	}
}
