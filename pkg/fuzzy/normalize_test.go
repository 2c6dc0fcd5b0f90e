package fuzzy

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain title",
			input:    "One More Time",
			expected: "one more time",
		},
		{
			name:     "Featuring credit stripped",
			input:    "Get Lucky (feat. Pharrell Williams)",
			expected: "get lucky",
		},
		{
			name:     "Ft abbreviation stripped",
			input:    "Airplanes ft. Hayley Williams",
			expected: "airplanes",
		},
		{
			name:     "Remaster tag stripped",
			input:    "Bohemian Rhapsody (Remastered 2011)",
			expected: "bohemian rhapsody",
		},
		{
			name:     "Accents folded",
			input:    "Désenchantée",
			expected: "desenchantee",
		},
		{
			name:     "Punctuation removed",
			input:    "Don't Stop Me Now!",
			expected: "don t stop me now",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.input); got != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeArtist(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple", "Daft Punk", "daft punk"},
		{"And unified", "Simon and Garfunkel", "simon & garfunkel"},
		{"Uppercase", "AC/DC", "ac dc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeArtist(tt.input); got != tt.expected {
				t.Errorf("NormalizeArtist(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("one more time", "one more time"); got != 1.0 {
		t.Errorf("identical strings should score 1.0, got %f", got)
	}

	if got := Similarity("", "something"); got != 0.0 {
		t.Errorf("empty string should score 0.0, got %f", got)
	}

	close := Similarity("one more time", "one more time daft punk")
	far := Similarity("one more time", "bohemian rhapsody")
	if close <= far {
		t.Errorf("expected %f (related) > %f (unrelated)", close, far)
	}
}
