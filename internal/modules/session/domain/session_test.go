package domain_test

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"algotimer/internal/modules/session/domain"
	apperrors "algotimer/internal/platform/errors"
)

func sessionWith(seconds []int) domain.Session {
	results := make([]domain.StageResult, len(seconds))
	for i, s := range seconds {
		results[i] = domain.StageResult{Stage: domain.StageID(i), Seconds: s, Source: domain.SourceSelf}
	}
	return domain.Session{Problem: "Two Sum", Results: results}
}

func TestSessionTotalIsSumOfStageDurations(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total equals the sum of stage durations", prop.ForAll(
		func(seconds []int) bool {
			s := sessionWith(seconds)
			sum := 0
			for _, v := range seconds {
				sum += v
			}
			return s.TotalSeconds() == sum && s.Validate() == nil
		},
		gen.SliceOfN(4, gen.IntRange(0, 24*3600)),
	))

	properties.Property("any prefix of the stage sequence is valid", prop.ForAll(
		func(n int) bool {
			s := sessionWith(make([]int, n))
			return s.Validate() == nil && s.Complete() == (n == domain.StageCount())
		},
		gen.IntRange(0, 4),
	))

	properties.Property("swapping two results breaks stage order", prop.ForAll(
		func(i, j int) bool {
			if i == j {
				return true
			}
			s := sessionWith([]int{1, 2, 3, 4})
			s.Results[i], s.Results[j] = s.Results[j], s.Results[i]
			return errors.Is(s.Validate(), apperrors.ErrValidation)
		},
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}

func TestSessionValidateRejects(t *testing.T) {
	t.Parallel()
	cases := map[string]domain.Session{
		"blank problem":   {Problem: "  "},
		"negative":        {Problem: "p", Results: []domain.StageResult{{Stage: domain.StageReading, Seconds: -1, Source: domain.SourceSelf}}},
		"gap":             {Problem: "p", Results: []domain.StageResult{{Stage: domain.StageThinking, Source: domain.SourceSelf}}},
		"repeat":          {Problem: "p", Results: []domain.StageResult{{Stage: domain.StageReading, Source: domain.SourceSelf}, {Stage: domain.StageReading, Source: domain.SourceSelf}}},
		"bad source":      {Problem: "p", Results: []domain.StageResult{{Stage: domain.StageReading, Source: "team"}}},
		"too many stages": sessionWith([]int{1, 1, 1, 1, 1}),
	}
	for name, s := range cases {
		if err := s.Validate(); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestSessionLookups(t *testing.T) {
	t.Parallel()
	thought := "binary search"
	s := domain.Session{Problem: "p", Results: []domain.StageResult{
		{Stage: domain.StageReading, Seconds: 10, Source: domain.SourceSelf},
		{Stage: domain.StageThinking, Seconds: 20, Text: &thought, Source: domain.SourceOther},
	}}
	r, ok := s.Result(domain.StageThinking)
	if !ok || r.TextOrEmpty() != "binary search" {
		t.Fatalf("expected thinking result, got %+v %t", r, ok)
	}
	if s.SourceOf(domain.StageThinking) != domain.SourceOther || s.SourceOf(domain.StageCoding) != domain.SourceSelf {
		t.Fatalf("unexpected sources")
	}
	if _, ok := s.Result(domain.StageCoding); ok {
		t.Fatalf("coding has not run")
	}
	if domain.PhaseAwaitingInput.String() != "awaiting-input" {
		t.Fatalf("unexpected phase name %s", domain.PhaseAwaitingInput)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	a := sessionWith([]int{300, 40, 120, 60})
	a.Results[2].Source = domain.SourceOther
	b := sessionWith([]int{100, 20})
	stats := domain.Summarize([]domain.Session{a, b})
	if stats.Sessions != 2 || stats.TotalSeconds != 640 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.AverageSeconds[domain.StageReading] != 200 || stats.AverageSeconds[domain.StageThinking] != 30 || stats.AverageSeconds[domain.StageCoding] != 120 {
		t.Fatalf("unexpected averages: %+v", stats.AverageSeconds)
	}
	if stats.SelfThoughts != 2 || stats.SelfAnswers != 0 {
		t.Fatalf("unexpected source counts: %+v", stats)
	}
	if empty := domain.Summarize(nil); empty.Sessions != 0 || len(empty.AverageSeconds) != 0 {
		t.Fatalf("empty history should have no stats: %+v", empty)
	}
}
