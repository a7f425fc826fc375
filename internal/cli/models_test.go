package cli

import "testing"

func TestIsValidGeminiModel(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		// Valid cases
		{"gemini-2.5-flash", true},
		{"gemini-2.5-pro", true},
		{"gemini-3-pro-preview", true},
		{" gemini-2.5-flash ", true},

		// Invalid cases
		{"", false},
		{"gemini-1.0-pro", false},
		{"gpt-5-mini", false},
		{"flash", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := isValidGeminiModel(tt.model)
			if got != tt.want {
				t.Errorf(
					"isValidGeminiModel(%q) = %v, want %v",
					tt.model,
					got,
					tt.want,
				)
			}
		})
	}
}

func TestIsValidOpenAIModel(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		// Valid cases
		{"gpt-5-mini", true},
		{"gpt-5", true},
		{"o3", true},
		{" o1-pro ", true},

		// Invalid cases
		{"", false},
		{"gpt-4", false},
		{"gemini-2.5-flash", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := isValidOpenAIModel(tt.model)
			if got != tt.want {
				t.Errorf(
					"isValidOpenAIModel(%q) = %v, want %v",
					tt.model,
					got,
					tt.want,
				)
			}
		})
	}
}

func TestIsValidAnthropicModel(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		// Valid cases
		{"claude-haiku-4-5", true},
		{"claude-sonnet-4-5", true},
		{"claude-opus-4-1", true},

		// Invalid cases
		{"", false},
		{"claude-2", false},
		{"haiku", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := isValidAnthropicModel(tt.model)
			if got != tt.want {
				t.Errorf(
					"isValidAnthropicModel(%q) = %v, want %v",
					tt.model,
					got,
					tt.want,
				)
			}
		})
	}
}
