package countdown

import (
	"testing"
	"time"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		distance time.Duration
		want     Remaining
	}{
		{
			name:     "one of each",
			distance: 90061001 * time.Millisecond,
			want:     Remaining{Total: 90061001 * time.Millisecond, Days: 1, Hours: 1, Minutes: 1, Seconds: 1},
		},
		{
			name:     "seconds only",
			distance: 59 * time.Second,
			want:     Remaining{Total: 59 * time.Second, Seconds: 59},
		},
		{
			name:     "sub-second truncates",
			distance: 999 * time.Millisecond,
			want:     Remaining{Total: 999 * time.Millisecond},
		},
		{
			name:     "canonical maxima",
			distance: 2*24*time.Hour + 23*time.Hour + 59*time.Minute + 59*time.Second,
			want:     Remaining{Total: 2*24*time.Hour + 23*time.Hour + 59*time.Minute + 59*time.Second, Days: 2, Hours: 23, Minutes: 59, Seconds: 59},
		},
		{
			name:     "exactly now",
			distance: 0,
			want:     Remaining{},
		},
		{
			name:     "negative uses floor semantics",
			distance: -5 * time.Second,
			want:     Remaining{Total: -5 * time.Second, Days: -1, Hours: 23, Minutes: 59, Seconds: 55},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(epoch.Add(tt.distance), epoch)
			if got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeMatchesComponents(t *testing.T) {
	for d := int64(0); d < 5; d++ {
		for h := int64(0); h < 24; h += 7 {
			for m := int64(0); m < 60; m += 13 {
				for s := int64(0); s < 60; s += 17 {
					distance := time.Duration(d)*24*time.Hour +
						time.Duration(h)*time.Hour +
						time.Duration(m)*time.Minute +
						time.Duration(s)*time.Second
					r := Compute(epoch.Add(distance), epoch)
					if r.Days != d || r.Hours != h || r.Minutes != m || r.Seconds != s {
						t.Fatalf("Compute(%v) = %+v, want %d/%d/%d/%d", distance, r, d, h, m, s)
					}
				}
			}
		}
	}
}

func TestRemainingExpired(t *testing.T) {
	if (Remaining{Total: time.Millisecond}).Expired() {
		t.Error("positive remaining reported expired")
	}
	if !(Remaining{}).Expired() {
		t.Error("zero remaining not expired")
	}
	if !(Remaining{Total: -time.Second}).Expired() {
		t.Error("negative remaining not expired")
	}
}

func TestFormatUnit(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "00"},
		{3, "03"},
		{5, "05"},
		{9, "09"},
		{10, "10"},
		{12, "12"},
		{99, "99"},
		{100, "100"},
		{1234, "1234"},
	}
	for _, tt := range tests {
		if got := FormatUnit(tt.in); got != tt.want {
			t.Errorf("FormatUnit(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
