package config

import (
	"testing"
	"time"
)

func TestParseExpiry(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"plain hours", "24h", 24 * time.Hour, false},
		{"minutes", "90m", 90 * time.Minute, false},
		{"day suffix", "7d", 7 * 24 * time.Hour, false},
		{"week suffix", "2w", 14 * 24 * time.Hour, false},
		{"garbage", "soon", 0, true},
		{"empty", "", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseExpiry(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseExpiry(%q) expected error, got %v", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseExpiry(%q) error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("parseExpiry(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSourcePrecedence(t *testing.T) {
	t.Setenv("CFG_TEST_KEY", "from-env")

	src := source{params: map[string]string{"CFG_TEST_KEY": "from-ssm"}}
	if got := src.get("cfg_test_key", "fallback"); got != "from-ssm" {
		t.Errorf("get() = %q, want SSM value to win", got)
	}

	src = source{}
	if got := src.get("CFG_TEST_KEY", "fallback"); got != "from-env" {
		t.Errorf("get() = %q, want env value", got)
	}
	if got := src.get("CFG_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("get() = %q, want default", got)
	}
}

func TestSourceGetBool(t *testing.T) {
	src := source{params: map[string]string{"FLAG_ON": "TRUE", "FLAG_OFF": "no"}}
	if !src.getBool("FLAG_ON", false) {
		t.Error("getBool(FLAG_ON) = false, want true")
	}
	if src.getBool("FLAG_OFF", true) {
		t.Error("getBool(FLAG_OFF) = true, want false")
	}
	if !src.getBool("FLAG_MISSING", true) {
		t.Error("getBool default not honoured")
	}
}
