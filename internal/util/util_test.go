package util

import "testing"

func TestContentHash(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "Empty",
			content:  "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "Hello",
			content:  "hello",
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContentHash([]byte(tc.content)); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"PSSP2025", false},
		{" a ", false},
	}

	for _, tc := range testCases {
		if got := IsBlank(tc.input); got != tc.expected {
			t.Errorf("IsBlank(%q) = %v, expected %v", tc.input, got, tc.expected)
		}
	}
}

func TestParseIndex(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    int
		expectError bool
	}{
		{name: "Zero", input: "0", expected: 0},
		{name: "Positive", input: "12", expected: 12},
		{name: "Whitespace", input: " 3 ", expected: 3},
		{name: "Negative", input: "-1", expectError: true},
		{name: "Not a number", input: "abc", expectError: true},
		{name: "Empty", input: "", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseIndex(tc.input)
			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, got)
			}
		})
	}
}
