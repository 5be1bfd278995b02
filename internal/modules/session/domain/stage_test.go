package domain_test

import (
	"errors"
	"testing"

	"algotimer/internal/modules/session/domain"
	apperrors "algotimer/internal/platform/errors"
)

func TestStageSequenceAndCapabilities(t *testing.T) {
	t.Parallel()
	stages := domain.Stages()
	want := []struct {
		label     string
		input     bool
		hasSource bool
		textKey   string
	}{
		{"Reading", false, false, ""},
		{"Thinking", true, true, "thought"},
		{"Coding", true, true, "answer"},
		{"Reviewing", true, false, "notes"},
	}
	if len(stages) != len(want) || domain.StageCount() != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(stages))
	}
	for i, s := range stages {
		w := want[i]
		if s.ID != domain.StageID(i) || s.Label != w.label || s.RequiresInput != w.input || s.HasSource != w.hasSource || s.TextKey != w.textKey {
			t.Fatalf("stage %d mismatch: %+v", i, s)
		}
	}
	stages[0].Label = "mutated"
	if domain.Stages()[0].Label != "Reading" {
		t.Fatalf("Stages must return a copy")
	}
}

func TestStageByLabelAcceptsLegacyLabels(t *testing.T) {
	t.Parallel()
	cases := map[string]domain.StageID{
		"Reading":                       domain.StageReading,
		"📖 Reading":                     domain.StageReading,
		"🧠 Thinking":                    domain.StageThinking,
		"💻 Coding":                      domain.StageCoding,
		"📖 Reviewing Others' Solutions": domain.StageReviewing,
	}
	for label, want := range cases {
		got, ok := domain.StageByLabel(label)
		if !ok || got.ID != want {
			t.Fatalf("label %q: expected %s, got %+v ok=%t", label, want, got, ok)
		}
	}
	if _, ok := domain.StageByLabel("Napping"); ok {
		t.Fatalf("unknown label must not resolve")
	}
}

func TestBudgetsFor(t *testing.T) {
	t.Parallel()
	b := domain.Budgets{Read: 1, Think: 2, Code: 3, Search: 4}
	for i, want := range []int{1, 2, 3, 4} {
		if got := b.For(domain.StageID(i)); got != want {
			t.Fatalf("stage %d: expected %d, got %d", i, want, got)
		}
	}
	if b.For(domain.StageID(9)) != 0 {
		t.Fatalf("unknown stage must have no budget")
	}
}

func TestParseSource(t *testing.T) {
	t.Parallel()
	if s, err := domain.ParseSource(""); err != nil || s != domain.SourceSelf {
		t.Fatalf("empty source should default to self, got %q %v", s, err)
	}
	if s, err := domain.ParseSource("other"); err != nil || s != domain.SourceOther {
		t.Fatalf("expected other, got %q %v", s, err)
	}
	if _, err := domain.ParseSource("team"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if domain.SourceSelf.Toggle() != domain.SourceOther || domain.SourceOther.Toggle() != domain.SourceSelf {
		t.Fatalf("toggle must flip between self and other")
	}
}
