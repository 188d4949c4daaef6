package llm

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptCatalogYAML []byte

// Prompt is the instruction pair for one operation.
type Prompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// PromptVars fills the {{...}} placeholders of a prompt.
type PromptVars struct {
	Content  string
	Analysis string
	Count    int
}

var prompts = mustLoadPrompts(promptCatalogYAML)

func mustLoadPrompts(raw []byte) map[Operation]Prompt {
	catalog, err := parsePrompts(raw)
	if err != nil {
		panic(err)
	}
	return catalog
}

func parsePrompts(raw []byte) (map[Operation]Prompt, error) {
	var catalog map[Operation]Prompt
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	for _, op := range []Operation{OpAnalyze, OpSummarize, OpFlashcards, OpQuiz} {
		p, ok := catalog[op]
		if !ok || strings.TrimSpace(p.System) == "" || strings.TrimSpace(p.User) == "" {
			return nil, fmt.Errorf("prompt catalog missing %q", op)
		}
	}
	return catalog, nil
}

// BuildMessages renders the system and user messages for op.
func BuildMessages(op Operation, vars PromptVars) ([]Message, error) {
	p, ok := prompts[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", op)
	}
	replacer := strings.NewReplacer(
		"{{CONTENT}}", vars.Content,
		"{{ANALYSIS}}", vars.Analysis,
		"{{COUNT}}", strconv.Itoa(vars.Count),
	)
	return []Message{
		{Role: "system", Content: strings.TrimSpace(p.System)},
		{Role: "user", Content: strings.TrimSpace(replacer.Replace(p.User))},
	}, nil
}
