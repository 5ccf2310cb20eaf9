package score

import (
	"math"
	"testing"
)

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}
	for _, tc := range tests {
		if got := Clamp01(tc.in); got != tc.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSum_ClampsAndAdds(t *testing.T) {
	contribs := []Contribution[int]{
		{Name: "double", Value: func(n int) float64 { return float64(n) * 0.1 }},
		{Name: "flat", Value: func(int) float64 { return 0.2 }},
	}
	if got := Sum(0.5, 1, contribs); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("expected 0.8, got %v", got)
	}
	if got := Sum(0.5, 10, contribs); got != 1 {
		t.Errorf("expected clamp to 1, got %v", got)
	}
}

func TestBreakdown(t *testing.T) {
	contribs := []Contribution[string]{
		{Name: "len", Value: func(s string) float64 { return float64(len(s)) }},
	}
	b := Breakdown("abc", contribs)
	if b["len"] != 3 {
		t.Errorf("expected len=3, got %v", b["len"])
	}
}

func TestCapped(t *testing.T) {
	if got := Capped(1, 0.15, 0.3); got != 0.15 {
		t.Errorf("expected 0.15, got %v", got)
	}
	if got := Capped(5, 0.15, 0.3); got != 0.3 {
		t.Errorf("expected cap 0.3, got %v", got)
	}
	if got := Capped(0, 0.15, 0.3); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
