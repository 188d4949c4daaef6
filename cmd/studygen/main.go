package main

// Run the study-material pipeline on a local file:
//   go run ./cmd/studygen -file notes.pdf -flashcards 15 -quiz 10

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"studyhub-backend/internal/bootstrap"
	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/pipeline"
	"studyhub-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	path := flag.String("file", "", "Path to a pdf, docx, doc, txt or md file")
	flashcards := flag.Int("flashcards", cfg.Limits.DefaultFlashcardCount, "Target flashcard count (5-50)")
	quiz := flag.Int("quiz", cfg.Limits.DefaultQuizCount, "Target quiz question count (5-50)")
	model := flag.String("model", cfg.LLM.Model, "Generation model")
	outPath := flag.String("out", "", "Path to write the JSON result (optional)")
	showText := flag.Bool("text", false, "Include the extracted text in the output")
	flag.Parse()

	if strings.TrimSpace(*path) == "" {
		exitErr("file path is required")
	}
	data, err := os.ReadFile(*path)
	if err != nil {
		exitErr(fmt.Sprintf("read file: %v", err))
	}

	p, extractor, err := bootstrap.NewPipeline(cfg)
	if err != nil {
		exitErr(err.Error())
	}

	file := extract.File{Name: filepath.Base(*path), Data: data}
	if _, err := extractor.Validate(file); err != nil {
		exitErr(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := p.Process(ctx, file, pipeline.Options{
		FlashcardCount: *flashcards,
		QuizCount:      *quiz,
		Model:          *model,
		OnProgress: func(pr pipeline.Progress) {
			if pr.TotalChunks > 0 && pr.Chunk > 0 {
				fmt.Fprintf(os.Stderr, "%s chunk %d/%d\n", pr.State, pr.Chunk, pr.TotalChunks)
				return
			}
			fmt.Fprintf(os.Stderr, "%s\n", pr.State)
		},
	})
	if err != nil {
		exitErr(fmt.Sprintf("process: %v", err))
	}

	result := map[string]any{"result": out.Result}
	if *showText {
		result["text"] = out.Text
	}
	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
