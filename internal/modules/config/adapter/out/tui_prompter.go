package out

import (
	"context"
	"fmt"
	"strconv"

	"algotimer/internal/modules/config/domain"
	configout "algotimer/internal/modules/config/port/out"
	"algotimer/internal/ui/views/setup"
)

// FormRunner shows a setup form and returns the submitted values.
type FormRunner func(ctx context.Context, entries []setup.Entry, problem string) ([]string, error)

// TUIPrompter collects the config through the terminal setup form.
type TUIPrompter struct {
	run FormRunner
}

func NewTUIPrompter(run FormRunner) configout.Prompter {
	if run == nil {
		run = setup.Run
	}
	return &TUIPrompter{run: run}
}

func (p *TUIPrompter) Prompt(ctx context.Context, seed domain.Config, problem error) (domain.Config, error) {
	values := map[string]string{"name": seed.Name}
	for key, v := range seed.Durations() {
		values[key] = strconv.Itoa(v)
	}
	fields := domain.Fields()
	entries := make([]setup.Entry, len(fields))
	for i, f := range fields {
		entries[i] = setup.Entry{Key: f.Key, Label: f.Label, Help: f.Help, Value: values[f.Key], Numeric: f.Key != "name"}
	}
	message := ""
	if problem != nil {
		message = problem.Error()
	}

	answers, err := p.run(ctx, entries, message)
	if err != nil {
		return domain.Config{}, err
	}
	if len(answers) != len(fields) {
		return domain.Config{}, fmt.Errorf("setup form returned %d values for %d fields", len(answers), len(fields))
	}
	cfg := domain.Config{Name: answers[0]}
	targets := map[string]*int{
		"read_time":   &cfg.ReadTime,
		"think_time":  &cfg.ThinkTime,
		"code_time":   &cfg.CodeTime,
		"search_time": &cfg.SearchTime,
	}
	for i, f := range fields[1:] {
		n, err := strconv.Atoi(answers[i+1])
		if err != nil {
			return domain.Config{}, fmt.Errorf("%s: %w", f.Label, err)
		}
		*targets[f.Key] = n
	}
	return cfg, nil
}
