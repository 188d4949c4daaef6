package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"studyhub-backend/internal/chunk"
	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/llm"
)

func newTestPipeline(gen *fakeGenerator, sleeper *sleepRecorder) *Pipeline {
	p := New(extract.New(0), gen, DefaultConfig())
	p.sleep = sleeper.sleep
	p.now = func() time.Time { return fixedNow }
	return p
}

func textFile(content string) extract.File {
	return extract.File{Name: "notes.txt", ContentType: extract.TypeText, Data: []byte(content)}
}

func sentenceText(totalChars int) string {
	const sentence = "Cells divide through mitosis and meiosis in living organisms. "
	var b strings.Builder
	for b.Len() < totalChars {
		b.WriteString(sentence)
	}
	return b.String()[:totalChars]
}

func TestSingleChunkDocument(t *testing.T) {
	gen := &fakeGenerator{}
	sleeper := &sleepRecorder{}
	p := newTestPipeline(gen, sleeper)

	out, err := p.Process(context.Background(), textFile(sentenceText(200)), Options{FlashcardCount: 5, QuizCount: 5})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := []string{"analyze", "summarize", "flashcards", "quiz"}
	if got := gen.Calls(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	res := out.Result
	if res.Metadata.Merged || res.Metadata.TotalChunks != 1 {
		t.Fatalf("unexpected metadata %+v", res.Metadata)
	}
	if res.Metadata.Model != "gpt-4-turbo-preview" || !res.Metadata.ProcessedAt.Equal(fixedNow) {
		t.Fatalf("unexpected metadata %+v", res.Metadata)
	}
	if res.Summary.Title != "Summary of Subject 1" {
		t.Fatalf("single path must not rewrite the summary, got %q", res.Summary.Title)
	}
	if len(res.Flashcards) > 5 || len(res.Quiz) > 5 {
		t.Fatalf("result exceeds requested counts")
	}
	if len(sleeper.pauses) != 0 {
		t.Fatalf("expected no pauses, got %v", sleeper.pauses)
	}
	if out.Text != strings.TrimSpace(sentenceText(200)) {
		t.Fatalf("unexpected extracted text")
	}
}

func TestLargeDocumentIsChunkedSequentially(t *testing.T) {
	gen := &fakeGenerator{}
	sleeper := &sleepRecorder{}
	p := newTestPipeline(gen, sleeper)
	text := sentenceText(9500)
	wantChunks := len(chunk.Split(strings.TrimSpace(text), chunk.DefaultSize))
	if wantChunks < 3 || wantChunks > 4 {
		t.Fatalf("fixture should split into 3-4 chunks, got %d", wantChunks)
	}

	var progress []Progress
	out, err := p.Process(context.Background(), textFile(text), Options{
		Model:      "gpt-3.5-turbo",
		OnProgress: func(pr Progress) { progress = append(progress, pr) },
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	calls := gen.Calls()
	if len(calls) != 4*wantChunks {
		t.Fatalf("expected %d calls, got %d", 4*wantChunks, len(calls))
	}
	for i, op := range calls {
		if want := []string{"analyze", "summarize", "flashcards", "quiz"}[i%4]; op != want {
			t.Fatalf("call %d = %s, want %s", i, op, want)
		}
	}
	if len(sleeper.pauses) != wantChunks-1 {
		t.Fatalf("expected %d pauses, got %d", wantChunks-1, len(sleeper.pauses))
	}
	for _, d := range sleeper.pauses {
		if d != time.Second {
			t.Fatalf("expected 1s pause, got %s", d)
		}
	}

	meta := out.Result.Metadata
	if !meta.Merged || meta.TotalChunks != wantChunks || meta.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if out.Result.Summary.Title != MergedSummaryTitle {
		t.Fatalf("expected merged summary title, got %q", out.Result.Summary.Title)
	}
	if len(out.Result.Quiz) != wantChunks {
		t.Fatalf("expected one quiz question per chunk, got %d", len(out.Result.Quiz))
	}

	last := progress[len(progress)-1]
	if last.State != StateDone || last.TotalChunks != wantChunks {
		t.Fatalf("unexpected final progress %+v", last)
	}
	sawMerging := false
	for _, pr := range progress {
		if pr.State == StateMerging {
			sawMerging = true
		}
	}
	if !sawMerging {
		t.Fatalf("expected a merging state, got %+v", progress)
	}
}

func TestMissingCredentialFailsBeforeAnyCall(t *testing.T) {
	gen := &fakeGenerator{notReady: true}
	_, err := newTestPipeline(gen, &sleepRecorder{}).Process(context.Background(), textFile(sentenceText(500)), Options{})
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if n := len(gen.Calls()); n != 0 {
		t.Fatalf("expected zero calls, got %d", n)
	}
}

func TestShortDocumentFails(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := newTestPipeline(gen, &sleepRecorder{}).Process(context.Background(), textFile(strings.Repeat("a", 30)), Options{})
	if !errors.Is(err, ErrDocumentTooShort) {
		t.Fatalf("expected ErrDocumentTooShort, got %v", err)
	}
	if n := len(gen.Calls()); n != 0 {
		t.Fatalf("expected zero calls, got %d", n)
	}
}

func TestPunctuationOnlyDocumentFails(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := newTestPipeline(gen, &sleepRecorder{}).Process(context.Background(), textFile(strings.Repeat("..!? ", 1000)), Options{})
	if !errors.Is(err, ErrDocumentTooShort) {
		t.Fatalf("expected ErrDocumentTooShort, got %v", err)
	}
	if stage, ok := FailedStage(err); !ok || stage != StageExtract {
		t.Fatalf("expected extract stage, got %q", stage)
	}
	if n := len(gen.Calls()); n != 0 {
		t.Fatalf("expected zero calls, got %d", n)
	}
}

func TestMalformedAnalysisAbortsChunk(t *testing.T) {
	schemaErr := &llm.SchemaError{Operation: llm.OpAnalyze, Reason: "invalid JSON"}
	gen := &fakeGenerator{analyzeErr: schemaErr}
	_, err := newTestPipeline(gen, &sleepRecorder{}).Process(context.Background(), textFile(sentenceText(400)), Options{})
	if !errors.Is(err, schemaErr) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if stage, ok := FailedStage(err); !ok || stage != StageAnalyze {
		t.Fatalf("expected analyze stage, got %q", stage)
	}
	if calls := gen.Calls(); len(calls) != 1 || calls[0] != "analyze" {
		t.Fatalf("expected only analyze call, got %v", calls)
	}
}

func TestFailureOnLaterChunkReturnsNoPartialResult(t *testing.T) {
	gen := &fakeGenerator{quizErrOn: 2}
	out, err := newTestPipeline(gen, &sleepRecorder{}).Process(context.Background(), textFile(sentenceText(9500)), Options{})
	if !llm.IsAPIError(err) {
		t.Fatalf("expected API error, got %v", err)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageQuiz || stageErr.Chunk != 2 {
		t.Fatalf("unexpected stage error %+v", stageErr)
	}
	if len(out.Result.Flashcards) != 0 || out.Text != "" {
		t.Fatalf("expected empty output on failure")
	}
	if len(gen.Calls()) != 8 {
		t.Fatalf("expected processing to stop at chunk 2, got %d calls", len(gen.Calls()))
	}
}

func TestCancellationBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := &fakeGenerator{}
	sleeper := &sleepRecorder{hook: cancel}

	_, err := newTestPipeline(gen, sleeper).Process(ctx, textFile(sentenceText(9500)), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(gen.Calls()) != 4 {
		t.Fatalf("expected only the first chunk to run, got %d calls", len(gen.Calls()))
	}
}

func TestPreconditionErrors(t *testing.T) {
	p := newTestPipeline(&fakeGenerator{}, &sleepRecorder{})
	tests := []struct {
		name string
		file extract.File
		opts Options
		want error
	}{
		{name: "unsupported", file: extract.File{Name: "a.png", ContentType: "image/png", Data: []byte("x")}, want: extract.ErrUnsupportedFormat},
		{name: "too large", file: extract.File{Name: "a.txt", ContentType: extract.TypeText, Data: make([]byte, extract.DefaultMaxBytes+1)}, want: extract.ErrFileTooLarge},
		{name: "count too high", file: textFile(sentenceText(200)), opts: Options{FlashcardCount: 51}, want: ErrInvalidOptions},
		{name: "count too low", file: textFile(sentenceText(200)), opts: Options{QuizCount: 4}, want: ErrInvalidOptions},
		{name: "unknown model", file: textFile(sentenceText(200)), opts: Options{Model: "gpt-2"}, want: ErrInvalidOptions},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Process(context.Background(), tt.file, tt.opts); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPipelineTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = time.Nanosecond
	p := New(extract.New(0), &fakeGenerator{}, cfg)
	_, err := p.Process(context.Background(), textFile(sentenceText(200)), Options{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
