package intent

import (
	"testing"
)

func TestShouldSearch(t *testing.T) {
	c := NewClassifier([]string{
		"where", "find", "aisle", "milk", "bread", "breakfast", "organic",
	})

	tests := []struct {
		name      string
		utterance string
		want      bool
	}{
		{
			name:      "location question",
			utterance: "Where is milk?",
			want:      true,
		},
		{
			name:      "case insensitive",
			utterance: "WHERE IS MILK?",
			want:      true,
		},
		{
			name:      "keyword inside sentence",
			utterance: "I want to find something for breakfast",
			want:      true,
		},
		{
			name:      "no product intent",
			utterance: "tell me a joke",
			want:      false,
		},
		{
			name:      "empty utterance",
			utterance: "",
			want:      false,
		},
		{
			name:      "category term",
			utterance: "do you have organic bananas",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ShouldSearch(tt.utterance); got != tt.want {
				t.Errorf("ShouldSearch(%q) = %v, want %v", tt.utterance, got, tt.want)
			}
		})
	}
}

func TestShouldSearchDeterministic(t *testing.T) {
	c := NewClassifier([]string{"milk"})
	for i := 0; i < 10; i++ {
		if c.ShouldSearch("Where is milk?") != c.ShouldSearch("WHERE IS MILK?") {
			t.Fatal("classifier must be deterministic and case-insensitive")
		}
	}
}

func TestNewClassifierNormalizesVocabulary(t *testing.T) {
	c := NewClassifier([]string{"  MILK  ", "", "Bread"})
	if !c.ShouldSearch("got any milk") {
		t.Error("expected trimmed lowercase keyword to match")
	}
	if !c.ShouldSearch("fresh bread here") {
		t.Error("expected mixed-case keyword to match")
	}
}
