package workers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mmonco/mpute/internal/repositories"
	"github.com/mmonco/mpute/internal/services"
	"github.com/mmonco/mpute/pkg/logger"
)

const (
	verifyBatchSize    = 20
	verifyPollInterval = 60 * time.Second
)

// VerifyWorker runs the verification pass over active projects that have
// not been verified yet. Accepted commands flip the verified flag;
// rejected or unreachable ones stay unverified and are retried on a
// later sweep. The flag only ever moves from false to true.
type VerifyWorker struct {
	*BaseWorker
	projectRepo  *repositories.ProjectRepository
	verifier     services.CommandVerifier
	pollInterval time.Duration
}

// NewVerifyWorker creates a new verification sweep worker
func NewVerifyWorker(workerID string, projectRepo *repositories.ProjectRepository, verifier services.CommandVerifier) *VerifyWorker {
	return &VerifyWorker{
		BaseWorker:   NewBaseWorker(workerID),
		projectRepo:  projectRepo,
		verifier:     verifier,
		pollInterval: verifyPollInterval,
	}
}

// Start begins the verification worker process
func (w *VerifyWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.Infof("Verify worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Verify worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("Verify worker %s stopping", w.WorkerID)
			return nil
		case <-time.After(w.pollInterval):
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce verifies one batch of pending projects
func (w *VerifyWorker) SweepOnce(ctx context.Context) {
	projects, err := w.projectRepo.GetUnverified(verifyBatchSize)
	if err != nil {
		logger.WithError(err).Errorf("Verify worker %s failed to load pending projects", w.WorkerID)
		return
	}

	for _, project := range projects {
		if err := w.verifier.Verify(ctx, project.Command); err != nil {
			var verificationErr *services.VerificationError
			if errors.As(err, &verificationErr) {
				logger.WithFields(logrus.Fields{
					"project_id": project.ID.String(),
					"reason":     verificationErr.Reason,
				}).Warn("Project command failed verification sweep")
				continue
			}
			logger.WithError(err).Errorf("Verify worker %s could not verify project %s", w.WorkerID, project.ID)
			continue
		}

		if err := w.projectRepo.MarkVerified(project.ID.String()); err != nil {
			logger.WithError(err).Errorf("Verify worker %s could not mark project %s verified", w.WorkerID, project.ID)
			continue
		}

		logger.WithField("project_id", project.ID.String()).Info("Project verified")
	}
}
