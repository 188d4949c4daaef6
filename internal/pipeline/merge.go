package pipeline

import (
	"errors"
	"time"

	"studyhub-backend/internal/study"
)

// MergedSummaryTitle titles the summary assembled from several chunks.
const MergedSummaryTitle = "Complete summary"

const (
	fallbackSubject = "Document"
	fallbackLevel   = study.LevelIntermediate
)

// Merge combines per-chunk results in order. Subject and level come from the
// first chunk; key concepts are deduplicated by exact name keeping the first
// occurrence; everything else is concatenated.
func Merge(results []study.ChunkResult, model string, now time.Time) (study.AggregatedResult, error) {
	if len(results) == 0 {
		return study.AggregatedResult{}, errors.New("merge requires at least one chunk result")
	}

	first := results[0].Analysis
	out := study.AggregatedResult{
		Analysis: study.Analysis{
			Subject:     first.Subject,
			Level:       first.Level,
			KeyConcepts: []study.KeyConcept{},
			Structure:   []study.Section{},
			Formulas:    []study.Formula{},
		},
		Summary: study.Summary{
			Title:    MergedSummaryTitle,
			Sections: []study.SummarySection{},
		},
		Flashcards: []study.Flashcard{},
		Quiz:       []study.QuizQuestion{},
		Metadata: study.Metadata{
			TotalChunks: len(results),
			Merged:      true,
			Model:       model,
			ProcessedAt: now,
		},
	}
	if out.Analysis.Subject == "" {
		out.Analysis.Subject = fallbackSubject
	}
	if out.Analysis.Level == "" {
		out.Analysis.Level = fallbackLevel
	}

	seen := make(map[string]struct{})
	for _, r := range results {
		for _, concept := range r.Analysis.KeyConcepts {
			if _, dup := seen[concept.Name]; dup {
				continue
			}
			seen[concept.Name] = struct{}{}
			out.Analysis.KeyConcepts = append(out.Analysis.KeyConcepts, concept)
		}
		out.Analysis.Structure = append(out.Analysis.Structure, r.Analysis.Structure...)
		out.Analysis.Formulas = append(out.Analysis.Formulas, r.Analysis.Formulas...)
		out.Summary.Sections = append(out.Summary.Sections, r.Summary.Sections...)
		out.Flashcards = append(out.Flashcards, r.Flashcards...)
		out.Quiz = append(out.Quiz, r.Quiz...)
	}
	return out, nil
}

// single wraps a lone chunk result without merging.
func single(r study.ChunkResult, model string, now time.Time) study.AggregatedResult {
	return study.AggregatedResult{
		Analysis:   r.Analysis,
		Summary:    r.Summary,
		Flashcards: r.Flashcards,
		Quiz:       r.Quiz,
		Metadata: study.Metadata{
			TotalChunks: 1,
			Merged:      false,
			Model:       model,
			ProcessedAt: now,
		},
	}
}
