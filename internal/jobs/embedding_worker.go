package jobs

import (
	"context"
	"fmt"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/metrics"
	"go.uber.org/zap"
)

const (
	// MaxAttempts is the number of tries a job gets before it is marked failed
	MaxAttempts = 3
)

// EmbeddingJobRepository defines the interface for embedding job persistence
type EmbeddingJobRepository interface {
	// ClaimPending retrieves and claims pending embedding jobs
	ClaimPending(ctx context.Context, limit int) ([]*domain.EmbeddingJob, error)

	// UpdateStatus updates the status of an embedding job
	UpdateStatus(ctx context.Context, id string, status domain.EmbeddingJobStatus, errMsg string) error

	// IncrementAttempts increments the attempt count for a job
	IncrementAttempts(ctx context.Context, id string) error
}

// EmbeddingService defines the interface for generating embeddings
type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, promptID string) error
}

// EmbeddingWorker processes embedding jobs
type EmbeddingWorker struct {
	repo    EmbeddingJobRepository
	service EmbeddingService
	logger  *zap.Logger
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance
func NewEmbeddingWorker(repo EmbeddingJobRepository, service EmbeddingService, logger *zap.Logger) *EmbeddingWorker {
	return &EmbeddingWorker{
		repo:    repo,
		service: service,
		logger:  logger,
	}
}

// ProcessJobs claims a batch of pending jobs and runs them sequentially.
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, 100)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	w.logger.Info("processing embedding jobs", zap.Int("count", len(jobs)))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			w.logger.Error("job processing error", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	return nil
}

func (w *EmbeddingWorker) processJob(ctx context.Context, job *domain.EmbeddingJob) error {
	err := w.service.GenerateEmbedding(ctx, job.PromptID)
	if err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	metrics.EmbeddingJobsTotal.WithLabelValues("completed").Inc()
	w.logger.Debug("embedding job completed", zap.String("job_id", job.ID), zap.String("prompt_id", job.PromptID))
	return nil
}

// handleJobFailure retries a failed job until it runs out of attempts.
func (w *EmbeddingWorker) handleJobFailure(ctx context.Context, job *domain.EmbeddingJob, jobErr error) error {
	w.logger.Warn("embedding job failed", zap.String("job_id", job.ID), zap.Error(jobErr))

	if err := w.repo.IncrementAttempts(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}

	if job.Attempts+1 >= MaxAttempts {
		errMsg := fmt.Sprintf("max attempts exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		metrics.EmbeddingJobsTotal.WithLabelValues("failed").Inc()
		return nil
	}

	errMsg := fmt.Sprintf("attempt %d: %v", job.Attempts+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
