package tokenizer

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "  Hello   World  ", "hello world"},
		{"folds diacritics", "Café", "cafe"},
		{"mixed accents", "Résidence Élysée", "residence elysee"},
		{"empty", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"already normal", "main street 42", "main street 42"},
		{"tabs and newlines", "a\tb\nc", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "punctuation boundaries",
			in:   "Hello, World! How are you?",
			want: []string{"hello", "world", "how", "are", "you"},
		},
		{
			name: "numeric tokens survive length filter",
			in:   "Unit 1 at 123 Main St",
			want: []string{"unit", "1", "at", "123", "main", "st"},
		},
		{
			name: "case-insensitive dedupe preserves order",
			in:   "test test TEST testing",
			want: []string{"test", "testing"},
		},
		{
			name: "short alpha tokens dropped",
			in:   "a b cd",
			want: []string{"cd"},
		},
		{
			name: "diacritics folded per token",
			in:   "Café Münchner",
			want: []string{"cafe", "munchner"},
		},
		{
			name: "length filter counts runes not bytes",
			in:   "ß я øy",
			want: []string{"øy"},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
		{
			name: "only punctuation",
			in:   "!!! ... ---",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenizeNumericContains(t *testing.T) {
	got := Tokenize("Unit 1 at 123 Main St")
	for _, want := range []string{"1", "123", "unit", "main"} {
		found := false
		for _, tok := range got {
			if tok == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Tokenize result %v missing token %q", got, want)
		}
	}
}
