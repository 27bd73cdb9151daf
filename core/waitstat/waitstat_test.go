package waitstat

import (
	"testing"
	"time"
)

func TestStatusString(t *testing.T) {
	cases := []struct {
		status Status
		want   string
	}{
		{Signaled, "signaled"},
		{TimedOut, "timed-out"},
		{Failed, "failed"},
		{Abandoned, "abandoned"},
		{Status(0), "unknown status"},
		{Status(200), "unknown status"},
	}
	for _, tc := range cases {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestClampMillis(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		want int
	}{
		{name: "zero", d: 0, want: 0},
		{name: "negative", d: -time.Second, want: 0},
		{name: "sub-millisecond", d: 100 * time.Microsecond, want: 0},
		{name: "plain", d: 1500 * time.Millisecond, want: 1500},
		{name: "at max", d: MaxWaitMillis * time.Millisecond, want: MaxWaitMillis},
		{name: "over max", d: (MaxWaitMillis + 5000) * time.Millisecond, want: MaxWaitMillis},
		{name: "infinite", d: Infinite, want: MaxWaitMillis},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampMillis(tc.d)
			if got != tc.want {
				t.Fatalf("ClampMillis(%v) = %d, want %d", tc.d, got, tc.want)
			}
			if got == ForeverMillis {
				t.Fatalf("ClampMillis(%v) produced the forever sentinel", tc.d)
			}
		})
	}
}
