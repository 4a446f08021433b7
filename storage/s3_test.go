package storage

import (
	"strings"
	"testing"
	"time"
)

func TestPhotoKey(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	key := photoKey(42, "portrait.JPG", now)
	if !strings.HasPrefix(key, "students/photos/42/2026/03/") {
		t.Errorf("key = %q, want students/photos/42/2026/03/ prefix", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q, want lowercased .jpg suffix", key)
	}

	key = photoKey(7, "noextension", now)
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q, want .jpg fallback for missing extension", key)
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"photo.png", "image/png"},
		{"photo.webp", "image/webp"},
		{"photo.bin", "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := contentTypeFor(tc.filename); got != tc.want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestKeyFromURL(t *testing.T) {
	url := "https://school-media.s3.eu-west-1.amazonaws.com/students/photos/42/2026/03/abc.jpg"
	if got := keyFromURL(url); got != "students/photos/42/2026/03/abc.jpg" {
		t.Errorf("keyFromURL() = %q", got)
	}
	if got := keyFromURL("https://example.com/photo.jpg"); got != "" {
		t.Errorf("keyFromURL() = %q, want empty for foreign URL", got)
	}
}
