package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyhub-backend/internal/apperr"
	"studyhub-backend/internal/documents"
	"studyhub-backend/internal/pipeline"
	"studyhub-backend/internal/queue"
	"studyhub-backend/internal/shared/metrics"
	"studyhub-backend/internal/shared/telemetry"
)

// ErrArchiveRequired is returned when a queued job has no archived upload for
// the worker to read.
var ErrArchiveRequired = fmt.Errorf("%w: upload archive unavailable for queued processing", apperr.ErrStorage)

// Processor runs one document request to completion.
type Processor interface {
	ProcessAndSave(ctx context.Context, req documents.ProcessRequest, onProgress func(pipeline.Progress)) (documents.SaveResult, error)
}

// Service creates jobs and runs them, in process or through a queue.
type Service struct {
	Store     Store
	Processor Processor
	Queue     queue.Client // nil runs jobs in process

	baseCtx context.Context
	wg      sync.WaitGroup
	now     func() time.Time
	newID   func() string
}

// NewService constructs a Service. In-process runs derive from baseCtx so a
// shutdown cancels them.
func NewService(baseCtx context.Context, store Store, processor Processor, q queue.Client) *Service {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Service{
		Store:     store,
		Processor: processor,
		Queue:     q,
		baseCtx:   baseCtx,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Enqueue records a queued job and dispatches it.
func (s *Service) Enqueue(ctx context.Context, req documents.ProcessRequest) (string, error) {
	now := s.now()
	req.JobID = s.newID()
	job := Job{
		ID:        req.JobID,
		UserID:    req.UserID,
		Status:    StatusQueued,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.Request.Data = nil
	if err := s.Store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("%w: create job: %w", apperr.ErrStorage, err)
	}

	if s.Queue == nil {
		data := req.Data
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			r := job.Request
			r.Data = data
			_ = s.execute(s.baseCtx, job.ID, r)
		}()
		return job.ID, nil
	}

	if req.StorageKey == "" {
		s.fail(ctx, job.ID, ErrArchiveRequired)
		return "", ErrArchiveRequired
	}
	err := s.Queue.Send(ctx, queue.Message{
		JobID:      job.ID,
		RequestID:  telemetry.RequestIDFromContext(ctx),
		EnqueuedAt: now.Format(time.RFC3339),
		Version:    queue.MessageVersion,
	})
	if err != nil {
		s.fail(ctx, job.ID, err)
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	telemetry.Info("jobs.enqueued", map[string]any{"job_id": job.ID, "user_id": job.UserID})
	return job.ID, nil
}

// Run processes a queued job by ID. Jobs already terminal are skipped so a
// redelivered message is harmless.
func (s *Service) Run(ctx context.Context, jobID string) error {
	job, err := s.Store.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		telemetry.Info("jobs.skip_terminal", map[string]any{"job_id": jobID, "status": string(job.Status)})
		return nil
	}
	return s.execute(ctx, jobID, job.Request)
}

// Get returns a job owned by userID.
func (s *Service) Get(ctx context.Context, userID, jobID string) (Job, error) {
	job, err := s.Store.Get(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if job.UserID != userID {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// Wait blocks until in-process jobs finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) execute(ctx context.Context, jobID string, req documents.ProcessRequest) error {
	if _, err := s.Store.Update(ctx, jobID, func(j *Job) error {
		j.Status = StatusProcessing
		j.UpdatedAt = s.now()
		return nil
	}); err != nil {
		return err
	}
	metrics.IncWorkerJob("started")

	onProgress := func(p pipeline.Progress) {
		_, err := s.Store.Update(ctx, jobID, func(j *Job) error {
			j.Stage = string(p.State)
			j.Chunk = p.Chunk
			j.TotalChunks = p.TotalChunks
			j.UpdatedAt = s.now()
			return nil
		})
		if err != nil {
			telemetry.Warn("jobs.progress.update_failed", map[string]any{"job_id": jobID, "error": err})
		}
	}

	res, err := s.Processor.ProcessAndSave(ctx, req, onProgress)
	if err != nil {
		s.fail(ctx, jobID, err)
		return err
	}

	warnings := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, w.String())
	}
	_, err = s.Store.Update(context.WithoutCancel(ctx), jobID, func(j *Job) error {
		now := s.now()
		j.Status = StatusCompleted
		j.Stage = string(pipeline.StateDone)
		j.DocumentID = res.Document.ID
		j.FlashcardsCount = res.FlashcardsCount
		j.QuizCount = res.QuizCount
		j.Warnings = warnings
		j.UpdatedAt = now
		j.CompletedAt = &now
		return nil
	})
	if err != nil {
		return err
	}
	metrics.IncWorkerJob("completed")
	telemetry.Info("jobs.completed", map[string]any{
		"job_id":      jobID,
		"document_id": res.Document.ID,
		"warnings":    len(warnings),
	})
	return nil
}

// fail marks a job failed with the classified error. The update outlives a
// cancelled ctx so shutdowns still leave a terminal record.
func (s *Service) fail(ctx context.Context, jobID string, cause error) {
	cl := apperr.Classify(cause)
	if errors.Is(cause, context.Canceled) {
		cl.Message = "Processing was cancelled"
	}
	stage, _ := pipeline.FailedStage(cause)
	_, err := s.Store.Update(context.WithoutCancel(ctx), jobID, func(j *Job) error {
		now := s.now()
		j.Status = StatusFailed
		j.FailedStage = string(stage)
		j.ErrorCode = cl.Code
		j.ErrorMessage = cl.Message
		j.UpdatedAt = now
		j.CompletedAt = &now
		return nil
	})
	if err != nil {
		telemetry.Error("jobs.fail.update_failed", map[string]any{"job_id": jobID, "error": err})
	}
	metrics.IncWorkerJob("failed")
	telemetry.Error("jobs.failed", map[string]any{
		"job_id": jobID,
		"code":   cl.Code,
		"stage":  string(stage),
		"error":  cause,
	})
}
