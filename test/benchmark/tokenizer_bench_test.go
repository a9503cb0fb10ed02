// Package benchmark contains Go benchmarks for the tokenizer, the index
// engine, and the ranked search path, measuring throughput and allocation
// behaviour.
package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kwhittaker/estatesearch/internal/index/tokenizer"
)

var sampleTexts = map[string]string{
	"short":    "Replace window hinge in north bedroom",
	"accented": "Åsa Strøm viewed the apartment at Kirkegata 12B, São Paulo café",
	"long": strings.Repeat(`Annual boiler inspection scheduled for the property at
        Strandveien 4. The tenant reported that the radiator valve leaks when the
        heating circuit pressurises, and the listing agent asked for photos of the
        repaired window frame before the next viewing. Status moved to in progress
        after the contractor confirmed availability. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tokenizer.Tokenize(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	text := sampleTexts["accented"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := tokenizer.Tokenize(text)
			_ = tokens
		}
	})
}

// BenchmarkNormalize isolates the lowercase plus diacritic-folding step that
// runs on every query keystroke.
func BenchmarkNormalize(b *testing.B) {
	inputs := []struct {
		name string
		text string
	}{
		{"ascii", "replace window hinge"},
		{"folded", "Åse Strøm café São"},
	}
	for _, in := range inputs {
		b.Run(in.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				norm := tokenizer.Normalize(in.text)
				_ = norm
			}
		})
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "listing property task activity realtor inspection "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tokenizer.Tokenize(text)
				_ = tokens
			}
		})
	}
}
