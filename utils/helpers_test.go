package utils

import "testing"

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		valid bool
	}{
		{name: "admin", role: "admin", valid: true},
		{name: "teacher", role: "teacher", valid: true},
		{name: "student", role: "student", valid: true},
		{name: "guardian", role: "guardian", valid: true},
		{name: "finance", role: "finance", valid: true},
		{name: "unknown role", role: "principal", valid: false},
		{name: "case sensitive", role: "Admin", valid: false},
		{name: "empty", role: "", valid: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidRole(tc.role); got != tc.valid {
				t.Fatalf("IsValidRole(%q) = %v, want %v", tc.role, got, tc.valid)
			}
		})
	}
}

func TestIsValidTerm(t *testing.T) {
	tests := []struct {
		term  string
		valid bool
	}{
		{term: "1st", valid: true},
		{term: "2nd", valid: true},
		{term: "3rd", valid: true},
		{term: "4th", valid: false},
		{term: "first", valid: false},
		{term: "", valid: false},
	}

	for _, tc := range tests {
		if got := IsValidTerm(tc.term); got != tc.valid {
			t.Fatalf("IsValidTerm(%q) = %v, want %v", tc.term, got, tc.valid)
		}
	}
}

func TestIsValidAttendanceStatus(t *testing.T) {
	tests := []struct {
		status string
		valid  bool
	}{
		{status: "Present", valid: true},
		{status: "Absent", valid: true},
		{status: "Late", valid: true},
		{status: "Excused", valid: true},
		{status: "present", valid: false},
		{status: "Sick", valid: false},
		{status: "", valid: false},
	}

	for _, tc := range tests {
		if got := IsValidAttendanceStatus(tc.status); got != tc.valid {
			t.Fatalf("IsValidAttendanceStatus(%q) = %v, want %v", tc.status, got, tc.valid)
		}
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "jpeg", "png"}

	tests := []struct {
		name     string
		filename string
		valid    bool
	}{
		{name: "allowed lowercase", filename: "photo.jpg", valid: true},
		{name: "allowed uppercase", filename: "photo.PNG", valid: true},
		{name: "not allowed", filename: "report.pdf", valid: false},
		{name: "no extension", filename: "photo", valid: false},
		{name: "empty", filename: "", valid: false},
		{name: "double extension uses last", filename: "photo.pdf.jpg", valid: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidFileExtension(tc.filename, allowed); got != tc.valid {
				t.Fatalf("IsValidFileExtension(%q) = %v, want %v", tc.filename, got, tc.valid)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trims whitespace", input: "  hello  ", want: "hello"},
		{name: "removes null bytes", input: "he\x00llo", want: "hello"},
		{name: "plain string untouched", input: "hello", want: "hello"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input); got != tc.want {
				t.Fatalf("SanitizeString(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if err := CheckPassword("s3cret-password", hash); err != nil {
		t.Fatalf("expected matching password to verify, got %v", err)
	}
	if err := CheckPassword("wrong-password", hash); err == nil {
		t.Fatalf("expected mismatch error for wrong password")
	}
}
