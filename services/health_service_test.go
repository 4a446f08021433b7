package services

import (
	"testing"
	"time"
)

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds only", 42 * time.Second, "42s"},
		{"minutes", 3*time.Minute + 5*time.Second, "3m5s"},
		{"hours", 2*time.Hour + 30*time.Minute, "2h30m"},
		{"days", 25*time.Hour + 10*time.Minute, "1d1h10m"},
		{"negative clamps to zero", -time.Minute, "0s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatUptime(tc.d); got != tc.want {
				t.Errorf("formatUptime(%v) = %q, want %q", tc.d, got, tc.want)
			}
		})
	}
}

func TestHTTPStatusForOverall(t *testing.T) {
	s := NewHealthService()
	if got := s.HTTPStatusForOverall(healthCritical); got != 503 {
		t.Errorf("critical = %d, want 503", got)
	}
	if got := s.HTTPStatusForOverall(healthDegraded); got != 200 {
		t.Errorf("degraded = %d, want 200", got)
	}
	if got := s.HTTPStatusForOverall(healthOK); got != 200 {
		t.Errorf("ok = %d, want 200", got)
	}
}
