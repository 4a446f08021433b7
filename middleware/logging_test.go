package middleware

import "testing"

func TestAuditAction(t *testing.T) {
	cases := []struct {
		method string
		want   string
	}{
		{"POST", "CREATE"},
		{"PUT", "UPDATE"},
		{"PATCH", "UPDATE"},
		{"DELETE", "DELETE"},
		{"GET", ""},
		{"OPTIONS", ""},
	}
	for _, tc := range cases {
		if got := auditAction(tc.method); got != tc.want {
			t.Errorf("auditAction(%q) = %q, want %q", tc.method, got, tc.want)
		}
	}
}

func TestAuditResource(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/students/42", "students"},
		{"/api/invoices", "invoices"},
		{"/health", ""},
	}
	for _, tc := range cases {
		if got := auditResource(tc.path); got != tc.want {
			t.Errorf("auditResource(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
