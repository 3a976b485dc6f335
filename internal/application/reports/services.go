package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/application"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/application/pipeline"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/jobs"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/observability"
)

const (
	// DefaultQuery applies when the client sends no query field at all.
	DefaultQuery = "Summarise my Blood Test Report"
	// BlankQuery replaces a query that is present but blank.
	BlankQuery = "Summarise my Blood Test Report in detail and provide health recommendations."
)

var ErrEmptyUpload = errors.New("uploaded file is empty")

// Analyzer runs the agent pipeline over a report on disk.
type Analyzer interface {
	Run(ctx context.Context, query, filePath string) *pipeline.Result
}

// Service implements use-cases untuk laporan darah.
// Queue and Artifacts may be nil when only the sync path is used.
type Service struct {
	Repo      analysis.Repository
	Pipeline  Analyzer
	Queue     jobs.Queue
	Artifacts jobs.ArtifactStore
	Clock     application.Clock
	Logger    *zap.Logger
	UploadDir string
}

//
// ==== USE CASES ====
//

type AnalyzeCommand struct {
	File     io.Reader
	FileName string
	Query    string
	UserID   *string
}

type AnalyzeResult struct {
	Status        string           `json:"status"`
	Query         string           `json:"query"`
	Analysis      *pipeline.Result `json:"analysis"`
	FileProcessed string           `json:"file_processed"`
}

// NormalizeQuery trims q and swaps a blank query for the detailed default.
func NormalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return BlankQuery
	}
	return q
}

// Analyze saves the upload, runs the pipeline inline and stores the record.
// The temporary file is removed whatever happens.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*AnalyzeResult, error) {
	path, err := s.saveUpload(cmd.File)
	if path != "" {
		defer s.removeTemp(path)
	}
	if err != nil {
		return nil, err
	}

	query := NormalizeQuery(cmd.Query)
	result := s.Pipeline.Run(ctx, query, path)

	rec := &analysis.Record{
		ID:        uuid.NewString(),
		FileName:  cmd.FileName,
		Query:     query,
		Result:    result.Serialize(),
		CreatedAt: s.Clock.Now(),
		UserID:    cmd.UserID,
	}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	s.logger().Info("report analysed",
		zap.String("record_id", rec.ID),
		zap.String("file_name", cmd.FileName),
		zap.String("status", result.Status))

	return &AnalyzeResult{
		Status:        pipeline.StatusSuccess,
		Query:         query,
		Analysis:      result,
		FileProcessed: cmd.FileName,
	}, nil
}

type EnqueueCommand = AnalyzeCommand

type EnqueueResult struct {
	Status   string `json:"status"`
	JobID    string `json:"job_id"`
	Query    string `json:"query"`
	FileName string `json:"file_name"`
}

// Enqueue stores the upload in the artifact store and queues a job for the
// worker.
func (s *Service) Enqueue(ctx context.Context, cmd EnqueueCommand) (*EnqueueResult, error) {
	if s.Queue == nil || s.Artifacts == nil {
		return nil, errors.New("async processing is not configured")
	}

	path, err := s.saveUpload(cmd.File)
	if path != "" {
		defer s.removeTemp(path)
	}
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := objectKey(id)
	if err := s.putFile(ctx, key, path); err != nil {
		return nil, err
	}

	job := &jobs.Job{
		ID:         id,
		ObjectKey:  key,
		FileName:   cmd.FileName,
		Query:      NormalizeQuery(cmd.Query),
		UserID:     cmd.UserID,
		EnqueuedAt: s.Clock.Now(),
	}
	if err := s.Queue.Enqueue(ctx, job); err != nil {
		_ = s.Artifacts.Remove(context.Background(), key)
		return nil, err
	}
	observability.JobsTotal.WithLabelValues(string(jobs.StateQueued)).Inc()
	s.logger().Info("job queued", zap.String("job_id", id), zap.String("file_name", cmd.FileName))

	return &EnqueueResult{
		Status:   string(jobs.StateQueued),
		JobID:    id,
		Query:    job.Query,
		FileName: job.FileName,
	}, nil
}

// ProcessJob is the worker side of Enqueue. The returned error is also
// recorded as the job's failed status.
func (s *Service) ProcessJob(ctx context.Context, job *jobs.Job) error {
	log := s.logger().With(zap.String("job_id", job.ID))
	s.setStatus(ctx, &jobs.Status{JobID: job.ID, State: jobs.StateStarted})

	recordID, err := s.processJob(ctx, job)
	if err != nil {
		log.Error("job failed", zap.Error(err))
		// ctx may already be cancelled; still record the outcome
		s.setStatus(context.Background(), &jobs.Status{JobID: job.ID, State: jobs.StateFailed, Error: err.Error()})
		return err
	}

	log.Info("job finished", zap.String("record_id", recordID))
	s.setStatus(ctx, &jobs.Status{JobID: job.ID, State: jobs.StateFinished, RecordID: recordID})
	return nil
}

func (s *Service) processJob(ctx context.Context, job *jobs.Job) (string, error) {
	defer func() {
		if err := s.Artifacts.Remove(context.Background(), job.ObjectKey); err != nil {
			s.logger().Warn("failed to remove stored upload", zap.String("key", job.ObjectKey), zap.Error(err))
		}
	}()

	path := s.tempPath()
	if err := os.MkdirAll(s.UploadDir, 0o755); err != nil {
		return "", err
	}
	defer s.removeTemp(path)
	if err := s.Artifacts.Download(ctx, job.ObjectKey, path); err != nil {
		return "", fmt.Errorf("fetch upload: %w", err)
	}

	result := s.Pipeline.Run(ctx, job.Query, path)
	rec := &analysis.Record{
		ID:        uuid.NewString(),
		FileName:  job.FileName,
		Query:     job.Query,
		Result:    result.Serialize(),
		CreatedAt: s.Clock.Now(),
		UserID:    job.UserID,
	}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}
	return rec.ID, nil
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]*analysis.Record, error) {
	return s.Repo.History(ctx, limit, offset)
}

func (s *Service) JobStatus(ctx context.Context, id string) (*jobs.Status, error) {
	if s.Queue == nil {
		return nil, jobs.ErrNotFound
	}
	return s.Queue.Status(ctx, id)
}

//
// ==== helpers ====
//

func objectKey(jobID string) string { return "uploads/" + jobID + ".pdf" }

func (s *Service) tempPath() string {
	return filepath.Join(s.UploadDir, fmt.Sprintf("blood_test_report_%s.pdf", uuid.NewString()))
}

// saveUpload returns the temp path as soon as the file exists so the caller
// can clean it up even when the copy fails.
func (s *Service) saveUpload(r io.Reader) (string, error) {
	if r == nil {
		return "", ErrEmptyUpload
	}
	if err := os.MkdirAll(s.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := s.tempPath()
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return path, fmt.Errorf("write upload: %w", err)
	}
	if n == 0 {
		return path, ErrEmptyUpload
	}
	return path, nil
}

func (s *Service) putFile(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := s.Artifacts.Put(ctx, key, f, info.Size(), "application/pdf"); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

func (s *Service) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger().Warn("Error removing file", zap.String("path", path), zap.Error(err))
	}
}

func (s *Service) setStatus(ctx context.Context, st *jobs.Status) {
	st.UpdatedAt = s.Clock.Now()
	observability.JobsTotal.WithLabelValues(string(st.State)).Inc()
	if err := s.Queue.SetStatus(ctx, st); err != nil {
		s.logger().Warn("failed to record job status",
			zap.String("job_id", st.JobID),
			zap.String("state", string(st.State)),
			zap.Error(err))
	}
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
