package dedupe

import (
	"fmt"
	"testing"

	"github.com/atlasjobs/jobdex/internal/models"
)

func BenchmarkDedupe(b *testing.B) {
	e := NewEngine()
	in := make([]models.SearchResult, 100)
	for i := range in {
		in[i] = models.SearchResult{JobRecord: models.JobRecord{
			ID:      fmt.Sprintf("job-%d", i),
			Title:   fmt.Sprintf("Backend Developer %d", i%20),
			Company: fmt.Sprintf("Company %d", i%10),
		}}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Dedupe(in, 20)
	}
}

func BenchmarkRatio(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Ratio("senior backend developer", "senior backend engineer")
	}
}
