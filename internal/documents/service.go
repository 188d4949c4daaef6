package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"studyhub-backend/internal/apperr"
	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/flashcards"
	"studyhub-backend/internal/pipeline"
	"studyhub-backend/internal/quizzes"
	"studyhub-backend/internal/shared/metrics"
	"studyhub-backend/internal/shared/storage/object"
	"studyhub-backend/internal/shared/telemetry"
	"studyhub-backend/internal/study"
	"studyhub-backend/internal/subjects"
)

// Processor turns an uploaded file into an aggregated study result.
type Processor interface {
	ResolveOptions(opts pipeline.Options) (pipeline.Options, error)
	Process(ctx context.Context, file extract.File, opts pipeline.Options) (pipeline.Output, error)
}

// FileValidator checks type and size before any work is queued.
type FileValidator interface {
	Validate(f extract.File) (string, error)
}

// SubjectLookup confirms a subject belongs to the caller.
type SubjectLookup interface {
	Get(ctx context.Context, userID, id string) (subjects.Subject, error)
}

// Service contains business logic for documents and is the persistence
// gateway for pipeline results.
type Service struct {
	Repo       DocumentsRepo
	Flashcards flashcards.Repo
	Quizzes    quizzes.Repo
	Store      object.ObjectStore // optional upload archive
	Pipeline   Processor
	Validator  FileValidator
	Subjects   SubjectLookup // optional

	newID func() string
	now   func() time.Time
}

// NewService constructs a Service. Store and Subjects may be nil.
func NewService(repo DocumentsRepo, cards flashcards.Repo, quiz quizzes.Repo, store object.ObjectStore, p Processor, v FileValidator, subj SubjectLookup) *Service {
	return &Service{
		Repo:       repo,
		Flashcards: cards,
		Quizzes:    quiz,
		Store:      store,
		Pipeline:   p,
		Validator:  v,
		Subjects:   subj,
		newID:      uuid.NewString,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ProcessRequest describes one document to process. Data may be omitted
// when StorageKey points at the archived upload.
type ProcessRequest struct {
	JobID          string `json:"jobId,omitempty"`
	UserID         string `json:"userId"`
	SubjectID      string `json:"subjectId,omitempty"`
	FileName       string `json:"fileName"`
	ContentType    string `json:"contentType"`
	FileSize       int64  `json:"fileSize"`
	StorageKey     string `json:"storageKey,omitempty"`
	FlashcardCount int    `json:"flashcardCount,omitempty"`
	QuizCount      int    `json:"quizCount,omitempty"`
	Model          string `json:"model,omitempty"`
	Data           []byte `json:"-"`
}

func (r ProcessRequest) file() extract.File {
	return extract.File{Name: r.FileName, ContentType: r.ContentType, Data: r.Data}
}

func (r ProcessRequest) options() pipeline.Options {
	return pipeline.Options{
		FlashcardCount: r.FlashcardCount,
		QuizCount:      r.QuizCount,
		Model:          r.Model,
		RunID:          r.JobID,
	}
}

// Prepare checks everything that can be checked before processing starts,
// then archives the upload. An archive failure is logged and leaves
// StorageKey empty.
func (s *Service) Prepare(ctx context.Context, req ProcessRequest) (ProcessRequest, error) {
	if req.UserID == "" || strings.TrimSpace(req.FileName) == "" {
		return req, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if s.Validator != nil {
		if _, err := s.Validator.Validate(req.file()); err != nil {
			return req, err
		}
	}
	if _, err := s.Pipeline.ResolveOptions(req.options()); err != nil {
		return req, err
	}
	if req.SubjectID != "" && s.Subjects != nil {
		if _, err := s.Subjects.Get(ctx, req.UserID, req.SubjectID); err != nil {
			if errors.Is(err, subjects.ErrNotFound) {
				return req, fmt.Errorf("%w: unknown subjectId", ErrInvalidInput)
			}
			return req, err
		}
	}
	req.FileSize = int64(len(req.Data))

	if s.Store != nil && req.StorageKey == "" {
		key, err := s.archive(ctx, req)
		if err != nil {
			telemetry.Warn("documents.archive.failed", map[string]any{
				"user_id":   req.UserID,
				"file_name": req.FileName,
				"error":     err,
			})
		} else {
			req.StorageKey = key
		}
	}
	return req, nil
}

func (s *Service) archive(ctx context.Context, req ProcessRequest) (string, error) {
	key, err := object.NewKey(req.UserID, req.FileName)
	if err != nil {
		return "", err
	}
	if err := s.Store.Put(ctx, key, req.ContentType, bytes.NewReader(req.Data), int64(len(req.Data))); err != nil {
		return "", err
	}
	return key, nil
}

// ProcessAndSave runs the pipeline for req and persists the result. When
// req carries no data the archived upload is read back from the store.
func (s *Service) ProcessAndSave(ctx context.Context, req ProcessRequest, onProgress func(pipeline.Progress)) (SaveResult, error) {
	if len(req.Data) == 0 && req.StorageKey != "" {
		data, err := s.load(ctx, req.StorageKey)
		if err != nil {
			return SaveResult{}, err
		}
		req.Data = data
	}

	opts := req.options()
	opts.OnProgress = onProgress
	out, err := s.Pipeline.Process(ctx, req.file(), opts)
	if err != nil {
		return SaveResult{}, err
	}

	return s.Save(ctx, SaveInput{
		UserID:     req.UserID,
		SubjectID:  req.SubjectID,
		FileName:   req.FileName,
		FileType:   req.ContentType,
		FileSize:   int64(len(req.Data)),
		StorageKey: req.StorageKey,
		Text:       out.Text,
		Result:     out.Result,
	})
}

func (s *Service) load(ctx context.Context, key string) ([]byte, error) {
	if s.Store == nil {
		return nil, fmt.Errorf("%w: no object store for %s", apperr.ErrStorage, key)
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %w", apperr.ErrStorage, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", apperr.ErrStorage, err)
	}
	return data, nil
}

// SaveInput is a finished pipeline run ready to be recorded.
type SaveInput struct {
	UserID     string
	SubjectID  string
	FileName   string
	FileType   string
	FileSize   int64
	StorageKey string
	Text       string
	Result     study.AggregatedResult
}

// PartialFailure records a collection that could not be saved. Err stays
// server-side; String is safe to show clients.
type PartialFailure struct {
	Collection string
	Attempted  int
	Err        error
}

func (p PartialFailure) String() string {
	return fmt.Sprintf("%s: not saved (0 of %d)", p.Collection, p.Attempted)
}

// SaveResult reports what was persisted.
type SaveResult struct {
	Document        Document
	FlashcardsCount int
	QuizCount       int
	Warnings        []PartialFailure
	Result          study.AggregatedResult
}

// Save records the document, then its flashcards and quiz questions. Only
// the document insert is fatal; a failed flashcard or quiz insert is logged,
// reported as a warning and counted as zero.
func (s *Service) Save(ctx context.Context, in SaveInput) (SaveResult, error) {
	now := s.now()
	title := strings.TrimSpace(in.Result.Summary.Title)
	if title == "" {
		title = in.FileName
	}
	doc := Document{
		ID:          s.newID(),
		UserID:      in.UserID,
		SubjectID:   in.SubjectID,
		Title:       title,
		FileName:    in.FileName,
		FileSize:    in.FileSize,
		FileType:    in.FileType,
		StorageKey:  in.StorageKey,
		TextContent: in.Text,
		Analysis:    in.Result.Analysis,
		Summary:     in.Result.Summary,
		Metadata:    in.Result.Metadata,
		CreatedAt:   now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return SaveResult{}, fmt.Errorf("%w: create document: %w", apperr.ErrStorage, err)
	}

	result := SaveResult{Document: doc, Result: in.Result}

	if len(in.Result.Flashcards) > 0 {
		cards := flashcards.FromStudy(in.UserID, in.SubjectID, doc.ID, in.Result.Flashcards, s.newID, now)
		if err := s.Flashcards.CreateBatch(ctx, cards); err != nil {
			result.Warnings = append(result.Warnings, s.partial(doc, "flashcards", len(cards), err))
		} else {
			result.FlashcardsCount = len(cards)
		}
	}

	if len(in.Result.Quiz) > 0 {
		qs := quizzes.FromStudy(in.UserID, in.SubjectID, doc.ID, in.Result.Quiz, s.newID, now)
		if err := s.Quizzes.CreateBatch(ctx, qs); err != nil {
			result.Warnings = append(result.Warnings, s.partial(doc, "quiz_questions", len(qs), err))
		} else {
			result.QuizCount = len(qs)
		}
	}

	telemetry.Info("documents.saved", map[string]any{
		"document_id":      doc.ID,
		"user_id":          doc.UserID,
		"flashcards_count": result.FlashcardsCount,
		"quiz_count":       result.QuizCount,
		"warnings":         len(result.Warnings),
	})
	return result, nil
}

func (s *Service) partial(doc Document, collection string, attempted int, err error) PartialFailure {
	telemetry.Warn("documents.save.partial", map[string]any{
		"document_id": doc.ID,
		"user_id":     doc.UserID,
		"collection":  collection,
		"attempted":   attempted,
		"error":       err,
	})
	metrics.IncPersistenceWarning(collection)
	return PartialFailure{Collection: collection, Attempted: attempted, Err: err}
}

func (s *Service) Get(ctx context.Context, userID, id string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID, subjectID string) ([]Document, error) {
	return s.Repo.ListByUser(ctx, userID, subjectID)
}

// Stats fetches a document and its item counts concurrently.
func (s *Service) Stats(ctx context.Context, userID, id string) (Stats, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Stats{}, ErrNotFound
	}
	var out Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.Repo.Get(gctx, userID, id)
		out.Document = doc
		return err
	})
	g.Go(func() error {
		n, err := s.Flashcards.CountByDocument(gctx, id)
		out.FlashcardCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.Quizzes.CountByDocument(gctx, id)
		out.QuizCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return out, nil
}

// Delete removes a document with its flashcards, quiz questions and archived
// upload. Archive removal is best effort.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Flashcards.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("%w: delete flashcards: %w", apperr.ErrStorage, err)
	}
	if err := s.Quizzes.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("%w: delete quiz questions: %w", apperr.ErrStorage, err)
	}
	if err := s.Repo.Delete(ctx, userID, doc.ID); err != nil {
		return err
	}
	if s.Store != nil && doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("documents.archive.delete_failed", map[string]any{
				"document_id": doc.ID,
				"storage_key": doc.StorageKey,
				"error":       err,
			})
		}
	}
	return nil
}
