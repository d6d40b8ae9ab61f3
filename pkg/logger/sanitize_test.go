package logger

import "testing"

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john@example.com", "j***@*******.com"},
		{"a@b.com", "a@*.com"},
		{"no-at-sign", "[invalid-email]"},
		{"x@localhost", "x@localhost"},
	}

	for _, tt := range tests {
		if got := SanitizedEmail(tt.in); got != tt.want {
			t.Errorf("SanitizedEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeQueryString(t *testing.T) {
	if !SanitizeQueryString("limit=10&search=john") {
		t.Error("search queries should be redacted")
	}
	if !SanitizeQueryString("Token=abc") {
		t.Error("token should be redacted regardless of case")
	}
	if SanitizeQueryString("limit=10&offset=20&status=PENDING") {
		t.Error("pagination and status params should not be redacted")
	}
}
