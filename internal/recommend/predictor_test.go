package recommend

import (
	"math"
	"testing"

	"probrowse/internal/catalog/model"
	"probrowse/pkg/testutil"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestSolveProbabilityMissingParams(t *testing.T) {
	m := model.DifficultyModel{ProblemID: "abc001_a"}
	_, ok := SolveProbability(m, 1200)
	testutil.AssertFalse(t, ok, "model without parameters should not predict")

	m.Discrimination = floatPtr(0.005)
	_, ok = SolveProbability(m, 1200)
	testutil.AssertFalse(t, ok, "model missing raw difficulty should not predict")
}

func TestSolveProbabilityAtRawDifficulty(t *testing.T) {
	m := model.DifficultyModel{
		ProblemID:      "abc001_a",
		Discrimination: floatPtr(0.005),
		RawDifficulty:  floatPtr(1200),
	}
	p, ok := SolveProbability(m, 1200)
	testutil.AssertTrue(t, ok, "capable model should predict")
	if math.Abs(p-0.5) > 1e-9 {
		t.Fatalf("probability at raw difficulty = %v, want 0.5", p)
	}
}

func TestSolveProbabilityMonotonicInRating(t *testing.T) {
	m := model.DifficultyModel{
		ProblemID:      "abc001_a",
		Discrimination: floatPtr(0.004),
		RawDifficulty:  floatPtr(1500),
	}
	prev := -1.0
	for rating := 0; rating <= 3200; rating += 400 {
		p, ok := SolveProbability(m, rating)
		testutil.AssertTrue(t, ok, "capable model should predict")
		testutil.AssertTrue(t, p > prev, "probability should increase with rating")
		testutil.AssertTrue(t, p >= 0 && p <= 1, "probability should stay in [0, 1]")
		prev = p
	}
}

func TestSolveTime(t *testing.T) {
	m := model.DifficultyModel{ProblemID: "abc001_a"}
	_, ok := SolveTime(m, 1200)
	testutil.AssertFalse(t, ok, "model without parameters should not predict")

	m.Slope = floatPtr(-0.001)
	m.Intercept = floatPtr(8)
	seconds, ok := SolveTime(m, 1200)
	testutil.AssertTrue(t, ok, "capable model should predict")
	want := math.Exp(-0.001*1200 + 8)
	if math.Abs(seconds-want) > 1e-9 {
		t.Fatalf("solve time = %v, want %v", seconds, want)
	}

	faster, _ := SolveTime(m, 2000)
	testutil.AssertTrue(t, faster < seconds, "higher rating should solve faster with negative slope")
}

func TestCapabilityChecks(t *testing.T) {
	full := model.DifficultyModel{
		Slope:          floatPtr(-0.001),
		Intercept:      floatPtr(8),
		Discrimination: floatPtr(0.005),
		RawDifficulty:  floatPtr(1000),
	}
	testutil.AssertTrue(t, IsDifficultyCapable(full), "full model should be difficulty capable")
	testutil.AssertTrue(t, IsTimeCapable(full), "full model should be time capable")

	timeOnly := model.DifficultyModel{Slope: floatPtr(-0.001), Intercept: floatPtr(8)}
	testutil.AssertFalse(t, IsDifficultyCapable(timeOnly), "time-only model should not be difficulty capable")
	testutil.AssertTrue(t, IsTimeCapable(timeOnly), "time-only model should be time capable")
}
