package repository

import "testing"

func TestWeightTable(t *testing.T) {
	cases := map[Timeframe]float64{
		TF5m:  0.6,
		TF15m: 0.7,
		TF1h:  0.8,
		TF4h:  0.9,
		TF1d:  1.0,
	}
	for tf, want := range cases {
		if got := Weight(tf); got != want {
			t.Fatalf("weight(%s)=%v want %v", tf, got, want)
		}
	}
	if got := Weight("2w"); got != defaultWeight {
		t.Fatalf("unknown timeframe must use default weight, got %v", got)
	}
}

func TestNormalizeTimeframe(t *testing.T) {
	if got := NormalizeTimeframe(""); got != TF1h {
		t.Fatalf("empty should default to 1h, got %s", got)
	}
	if got := NormalizeTimeframe("4h"); got != TF4h {
		t.Fatalf("got %s want 4h", got)
	}
	if got := NormalizeTimeframe("bogus"); got != TF1h {
		t.Fatalf("invalid should default to 1h, got %s", got)
	}
}

func TestPreferenceOrderLongestFirst(t *testing.T) {
	order := PreferenceOrder()
	if len(order) != 5 {
		t.Fatalf("expected 5 timeframes, got %d", len(order))
	}
	if order[0] != TF1d || order[len(order)-1] != TF5m {
		t.Fatalf("preference order wrong: %v", order)
	}
}
