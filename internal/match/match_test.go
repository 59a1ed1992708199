package match

import (
	"math"
	"testing"
)

func TestScoreName_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"John Smith", "John Smith"},
		{"MacDonald", "McDonald"},
		{"Siobhán", "Siobhan"},
		{"O'Brien", "OBrien"},
		{"Larsen", "Larson"},
		{"Xavier", "Quinn"},
		{"", "John"},
	}
	for _, p := range pairs {
		got := ScoreName(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("ScoreName(%q, %q) = %v out of [0,1]", p[0], p[1], got)
		}
		if rev := ScoreName(p[1], p[0]); rev != got {
			t.Errorf("ScoreName not symmetric for %q/%q: %v vs %v", p[0], p[1], got, rev)
		}
	}
}

func TestScoreName_Identical(t *testing.T) {
	if got := ScoreName("John Smith", "john  smith"); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	// Diacritics and apostrophes normalize away.
	if got := ScoreName("Siobhán O'Brien", "Siobhan OBrien"); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	// Mc prefix folds to Mac, trailing -sen folds to -son.
	if got := ScoreName("McDonald", "MacDonald"); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := ScoreName("Larsen", "Larson"); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestScoreName_PhoneticBoost(t *testing.T) {
	got := ScoreName("Smith", "Smyth")
	if got < 0.8 {
		t.Fatalf("expected soundex boost >= 0.8, got %v", got)
	}
}

func TestScoreName_Unrelated(t *testing.T) {
	if got := ScoreName("Wilhelmina", "Jo"); got >= 0.4 {
		t.Fatalf("expected < 0.4 for unrelated names, got %v", got)
	}
}

func TestScoreName_Empty(t *testing.T) {
	if got := ScoreName("", "John"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := ScoreName("   ", "John"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestScoreDateOverlap(t *testing.T) {
	// Missing or unparseable sides are neutral.
	if got := ScoreDateOverlap("", "1900-01-01"); got != 0.5 {
		t.Errorf("missing side: got %v", got)
	}
	if got := ScoreDateOverlap("circa 1900", "1900"); got != 0.5 {
		t.Errorf("unparseable side: got %v", got)
	}

	// Identical full dates overlap completely.
	if got := ScoreDateOverlap("1900-01-01", "1900-01-01"); got != 1 {
		t.Errorf("identical dates: got %v", got)
	}

	// Disjoint full dates score exactly 0.
	if got := ScoreDateOverlap("1900-01-01", "1950-06-15"); got != 0 {
		t.Errorf("disjoint dates: got %v", got)
	}

	// A date inside a year range overlaps partially.
	within := ScoreDateOverlap("1900", "1900-06-15")
	if within <= 0 || within >= 1 {
		t.Errorf("date within year: got %v", within)
	}

	// Approximate year widens the range enough to reach a nearby date.
	approx := ScoreDateOverlap("~1900", "1901-01-15")
	exact := ScoreDateOverlap("1900", "1901-01-15")
	if approx <= exact {
		t.Errorf("approximate year should beat exact: %v vs %v", approx, exact)
	}
	if exact != 0 {
		t.Errorf("exact year vs later date should be 0, got %v", exact)
	}
}

func TestCompositeScore(t *testing.T) {
	got := CompositeScore(Features{
		Name:         Feature(1),
		Date:         Feature(0.5),
		Place:        Feature(0),
		Relationship: Feature(0),
	})
	want := 1*0.4 + 0.5*0.25
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}

	// Missing date defaults to neutral 0.5; other missing features to 0.
	neutral := CompositeScore(Features{Name: Feature(1)})
	if math.Abs(neutral-want) > 1e-9 {
		t.Fatalf("missing-date default: got %v, want %v", neutral, want)
	}
	if got := CompositeScore(Features{}); math.Abs(got-0.125) > 1e-9 {
		t.Fatalf("empty features: got %v, want 0.125", got)
	}
}

func TestRank(t *testing.T) {
	candidates := []Candidate{
		{ID: "low", Features: Features{}},
		{ID: "a", Features: Features{Name: Feature(1), Date: Feature(1), Place: Feature(1)}},
		{ID: "b", Features: Features{Name: Feature(1)}},
		{ID: "tie1", Features: Features{Name: Feature(0.8), Place: Feature(0.6)}},
		{ID: "tie2", Features: Features{Name: Feature(0.8), Place: Feature(0.6)}},
	}

	ranked := Rank(candidates, Options{})
	if len(ranked) == 0 || ranked[0].ID != "a" {
		t.Fatalf("expected a first, got %+v", ranked)
	}
	for _, c := range ranked {
		if c.ID == "low" {
			t.Fatalf("candidate below threshold kept: %+v", c)
		}
		if c.Score < 0.5 {
			t.Fatalf("score below min kept: %+v", c)
		}
	}

	// Stable sort keeps input order on ties.
	var tiePos []string
	for _, c := range ranked {
		if c.ID == "tie1" || c.ID == "tie2" {
			tiePos = append(tiePos, c.ID)
		}
	}
	if len(tiePos) == 2 && (tiePos[0] != "tie1" || tiePos[1] != "tie2") {
		t.Fatalf("tie order not stable: %v", tiePos)
	}

	limited := Rank(candidates, Options{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("expected 1 result, got %d", len(limited))
	}
}
