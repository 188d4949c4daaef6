package pipeline

import (
	"context"
	"fmt"
	"time"

	"studyhub-backend/internal/chunk"
	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/llm"
	"studyhub-backend/internal/shared/metrics"
	"studyhub-backend/internal/shared/telemetry"
	"studyhub-backend/internal/study"
)

// Extractor validates and extracts uploaded files.
type Extractor interface {
	Validate(f extract.File) (string, error)
	Extract(ctx context.Context, f extract.File) (string, error)
}

// Config bounds a pipeline run.
type Config struct {
	ChunkSize             int
	ChunkPause            time.Duration
	MinTextLength         int
	DefaultModel          string
	AllowedModels         []string
	DefaultFlashcardCount int
	DefaultQuizCount      int
	MinCount              int
	MaxCount              int
	Timeout               time.Duration
}

// DefaultConfig mirrors the documented processing limits.
func DefaultConfig() Config {
	return Config{
		ChunkSize:             chunk.DefaultSize,
		ChunkPause:            time.Second,
		MinTextLength:         50,
		DefaultModel:          "gpt-4-turbo-preview",
		AllowedModels:         []string{"gpt-4-turbo-preview", "gpt-3.5-turbo"},
		DefaultFlashcardCount: 10,
		DefaultQuizCount:      10,
		MinCount:              5,
		MaxCount:              50,
	}
}

// Options are the per-run caller choices.
type Options struct {
	FlashcardCount int
	QuizCount      int
	Model          string
	// RunID correlates log lines; the job ID when processing asynchronously.
	RunID string
	// OnProgress, when set, is called on every state change and chunk start.
	OnProgress func(Progress)
}

// Progress is a snapshot of a running pipeline.
type Progress struct {
	State       State
	Chunk       int
	TotalChunks int
}

// Output is a successful run: the extracted text and the aggregated result.
type Output struct {
	Text   string
	Result study.AggregatedResult
}

// Pipeline sequences extraction, chunking, generation and merging. It holds
// no per-run state and is safe for concurrent Process calls.
type Pipeline struct {
	extractor Extractor
	generator llm.Generator
	cfg       Config
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// New builds a Pipeline from injected collaborators.
func New(extractor Extractor, generator llm.Generator, cfg Config) *Pipeline {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunk.DefaultSize
	}
	return &Pipeline{
		extractor: extractor,
		generator: generator,
		cfg:       cfg,
		sleep:     sleepContext,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ResolveOptions applies defaults and checks ranges.
func (p *Pipeline) ResolveOptions(opts Options) (Options, error) {
	if opts.FlashcardCount == 0 {
		opts.FlashcardCount = p.cfg.DefaultFlashcardCount
	}
	if opts.QuizCount == 0 {
		opts.QuizCount = p.cfg.DefaultQuizCount
	}
	if opts.Model == "" {
		opts.Model = p.cfg.DefaultModel
	}
	if p.cfg.MaxCount > 0 {
		for name, n := range map[string]int{"flashcardCount": opts.FlashcardCount, "quizCount": opts.QuizCount} {
			if n < p.cfg.MinCount || n > p.cfg.MaxCount {
				return opts, fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidOptions, name, p.cfg.MinCount, p.cfg.MaxCount)
			}
		}
	}
	if len(p.cfg.AllowedModels) > 0 && !contains(p.cfg.AllowedModels, opts.Model) {
		return opts, fmt.Errorf("%w: unsupported model %q", ErrInvalidOptions, opts.Model)
	}
	return opts, nil
}

// Process runs one document to completion or failure. No partial result is
// returned on error; the error unwraps to the originating kind.
func (p *Pipeline) Process(ctx context.Context, file extract.File, opts Options) (Output, error) {
	started := time.Now()
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	r := &run{p: p, file: file}
	r.m.state = StateIdle
	r.m.onChange = r.logTransition

	out, err := r.execute(ctx, opts)
	if err != nil {
		if !r.m.state.Terminal() {
			_ = r.m.to(StateFailed)
		}
		telemetry.Error("pipeline.failed", map[string]any{
			"job_id":    r.opts.RunID,
			"file_name": file.Name,
			"state":     string(r.failedIn),
			"error":     err.Error(),
		})
		metrics.ObservePipeline("failed", time.Since(started).Seconds())
		return Output{}, err
	}
	metrics.ObservePipeline("completed", time.Since(started).Seconds())
	return out, nil
}

type run struct {
	p        *Pipeline
	file     extract.File
	opts     Options
	m        machine
	failedIn State
	chunk    int
	total    int
}

func (r *run) execute(ctx context.Context, opts Options) (Output, error) {
	opts, err := r.p.ResolveOptions(opts)
	if err != nil {
		return Output{}, err
	}
	r.opts = opts
	ctx = llm.WithModel(ctx, opts.Model)

	if _, err := r.p.extractor.Validate(r.file); err != nil {
		return Output{}, &StageError{Stage: StageValidate, Err: err}
	}
	if err := r.p.generator.Ready(); err != nil {
		return Output{}, &StageError{Stage: StageValidate, Err: err}
	}

	if err := r.m.to(StateExtracting); err != nil {
		return Output{}, err
	}
	text, err := r.p.extractor.Extract(ctx, r.file)
	if err != nil {
		return Output{}, &StageError{Stage: StageExtract, Err: err}
	}
	length := chunk.Len(text)
	if length < r.p.cfg.MinTextLength {
		return Output{}, &StageError{
			Stage: StageExtract,
			Err:   fmt.Errorf("%w: %d characters, need at least %d", ErrDocumentTooShort, length, r.p.cfg.MinTextLength),
		}
	}

	var result study.AggregatedResult
	if length <= r.p.cfg.ChunkSize {
		result, err = r.processSingle(ctx, text)
	} else {
		result, err = r.processChunked(ctx, text)
	}
	if err != nil {
		return Output{}, err
	}
	result.Metadata.ContentLength = length

	if err := r.m.to(StateDone); err != nil {
		return Output{}, err
	}
	return Output{Text: text, Result: result}, nil
}

func (r *run) processSingle(ctx context.Context, text string) (study.AggregatedResult, error) {
	r.total = 1
	r.chunk = 1
	if err := r.m.to(StateGenerating); err != nil {
		return study.AggregatedResult{}, err
	}
	res, err := r.generate(ctx, text, 0)
	if err != nil {
		return study.AggregatedResult{}, err
	}
	return single(res, r.opts.Model, r.p.now()), nil
}

func (r *run) processChunked(ctx context.Context, text string) (study.AggregatedResult, error) {
	chunks := chunk.Split(text, r.p.cfg.ChunkSize)
	if len(chunks) == 0 {
		return study.AggregatedResult{}, &StageError{
			Stage: StageExtract,
			Err:   fmt.Errorf("%w: no sentence content", ErrDocumentTooShort),
		}
	}
	r.total = len(chunks)
	if err := r.m.to(StateChunking); err != nil {
		return study.AggregatedResult{}, err
	}

	results := make([]study.ChunkResult, 0, len(chunks))
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return study.AggregatedResult{}, &StageError{Stage: StageAnalyze, Chunk: i + 1, Err: err}
		}
		r.chunk = i + 1
		r.report()
		res, err := r.generate(ctx, c, i+1)
		if err != nil {
			return study.AggregatedResult{}, err
		}
		results = append(results, res)

		if i < len(chunks)-1 && r.p.cfg.ChunkPause > 0 {
			if err := r.p.sleep(ctx, r.p.cfg.ChunkPause); err != nil {
				return study.AggregatedResult{}, &StageError{Stage: StageAnalyze, Chunk: i + 2, Err: err}
			}
		}
	}

	if len(results) == 1 {
		// One oversized sentence: nothing to merge.
		return single(results[0], r.opts.Model, r.p.now()), nil
	}

	if err := r.m.to(StateMerging); err != nil {
		return study.AggregatedResult{}, err
	}
	merged, err := Merge(results, r.opts.Model, r.p.now())
	if err != nil {
		return study.AggregatedResult{}, &StageError{Stage: StageMerge, Err: err}
	}
	return merged, nil
}

// generate runs analyze -> summarize -> flashcards -> quiz for one chunk.
func (r *run) generate(ctx context.Context, text string, chunkNo int) (study.ChunkResult, error) {
	var out study.ChunkResult
	fail := func(stage Stage, err error) (study.ChunkResult, error) {
		return study.ChunkResult{}, &StageError{Stage: stage, Chunk: chunkNo, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(StageAnalyze, err)
	}
	analysis, err := r.p.generator.Analyze(ctx, text)
	if err != nil {
		return fail(StageAnalyze, err)
	}
	out.Analysis = analysis

	if err := ctx.Err(); err != nil {
		return fail(StageSummarize, err)
	}
	if out.Summary, err = r.p.generator.Summarize(ctx, analysis); err != nil {
		return fail(StageSummarize, err)
	}

	if err := ctx.Err(); err != nil {
		return fail(StageFlashcards, err)
	}
	if out.Flashcards, err = r.p.generator.MakeFlashcards(ctx, analysis, r.opts.FlashcardCount); err != nil {
		return fail(StageFlashcards, err)
	}

	if err := ctx.Err(); err != nil {
		return fail(StageQuiz, err)
	}
	if out.Quiz, err = r.p.generator.MakeQuiz(ctx, analysis, r.opts.QuizCount); err != nil {
		return fail(StageQuiz, err)
	}

	metrics.IncChunksProcessed()
	return out, nil
}

func (r *run) logTransition(from, to State) {
	if to == StateFailed {
		r.failedIn = from
	}
	telemetry.Info("pipeline.state", map[string]any{
		"job_id":       r.opts.RunID,
		"file_name":    r.file.Name,
		"from":         string(from),
		"to":           string(to),
		"chunk":        r.chunk,
		"total_chunks": r.total,
	})
	r.report()
}

func (r *run) report() {
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(Progress{State: r.m.state, Chunk: r.chunk, TotalChunks: r.total})
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
