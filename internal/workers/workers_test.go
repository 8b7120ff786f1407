package workers

import (
	"runtime"
	"testing"
)

func withOverride(t *testing.T, n int) {
	t.Helper()
	prev := Override()
	SetOverride(n)
	t.Cleanup(func() { SetOverride(prev) })
}

func TestCount(t *testing.T) {
	withOverride(t, 0)
	procs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{"cpu no limit", 1.0, 0, procs},
		{"io no limit", 2.0, 0, procs * 2},
		{"limit caps", 2.0, 1, 1},
		{"tiny multiplier floors at one", 0.01, 0, max(1, int(float64(procs)*0.01))},
		{"zero multiplier", 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCountWithOverride(t *testing.T) {
	tests := []struct {
		name     string
		override int
		limit    int
		want     int
	}{
		{"override used", 4, 0, 4},
		{"override capped by limit", 10, 3, 3},
		{"override under limit", 2, 8, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withOverride(t, tt.override)
			if got := Count(1.5, tt.limit); got != tt.want {
				t.Errorf("Count with override %d = %d, want %d", tt.override, got, tt.want)
			}
		})
	}
}

func TestSetOverrideNegative(t *testing.T) {
	withOverride(t, -3)
	if got := Override(); got != 0 {
		t.Errorf("Override() = %d, want 0", got)
	}
}

func TestHelpers(t *testing.T) {
	withOverride(t, 0)
	procs := runtime.GOMAXPROCS(0)

	if got := ForCPU(0); got != procs {
		t.Errorf("ForCPU(0) = %d, want %d", got, procs)
	}
	if got := ForIO(0); got != procs*2 {
		t.Errorf("ForIO(0) = %d, want %d", got, procs*2)
	}
	wantMixed := max(1, int(float64(procs)*1.5))
	if got := ForMixed(0); got != wantMixed {
		t.Errorf("ForMixed(0) = %d, want %d", got, wantMixed)
	}
	if got := ForMixed(1); got != 1 {
		t.Errorf("ForMixed(1) = %d, want 1", got)
	}
}
