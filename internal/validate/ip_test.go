package validate

import "testing"

func TestIsIP(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"10.0.0.1", true},
		{"10.0.0.1/0", true},
		{"10.0.0.1/24", true},
		{"10.0.0.1/32", true},
		{"10.0.0.1/33", false},
		{"10.0.0.1/-1", false},
		{"256.0.0.1", false},
		{"::1", true},
		{"::1/128", true},
		{"::1/129", false},
		{"2001:db8::ff00:42:8329/64", true},
		{"not-an-ip", false},
		{"10.0.0.1/abc", false},
		{"10.0.0.1/", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsIP(tt.input); got != tt.want {
				t.Errorf("IsIP(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
