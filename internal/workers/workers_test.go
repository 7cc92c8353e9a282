package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	available := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{
			name:       "CPU multiplier",
			multiplier: 1.0,
			limit:      0,
			want:       available,
		},
		{
			name:       "IO multiplier",
			multiplier: 2.0,
			limit:      0,
			want:       available * 2,
		},
		{
			name:       "limit applies",
			multiplier: 2.0,
			limit:      1,
			want:       1,
		},
		{
			name:       "minimum of one",
			multiplier: 0.0001,
			limit:      0,
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv(envOverride, "3")
	if got := Count(1.0, 0); got != 3 {
		t.Errorf("Count with override = %d, want 3", got)
	}
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("Count with override and limit = %d, want 2", got)
	}

	t.Setenv(envOverride, "not-a-number")
	if got := Count(1.0, 0); got != runtime.GOMAXPROCS(0) {
		t.Errorf("Count with bad override = %d, want %d", got, runtime.GOMAXPROCS(0))
	}
}

func TestHelpers(t *testing.T) {
	if ForCPU(1) != 1 {
		t.Error("ForCPU(1) != 1")
	}
	if ForIO(1) != 1 {
		t.Error("ForIO(1) != 1")
	}
	if ForMixed(1) != 1 {
		t.Error("ForMixed(1) != 1")
	}
}
