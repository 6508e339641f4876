package workers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/mmonco/mpute/internal/repositories"
	"github.com/mmonco/mpute/internal/services"
	"github.com/mmonco/mpute/pkg/logger"
)

// WorkerManager manages the background workers
type WorkerManager struct {
	workers     []Worker
	projectRepo *repositories.ProjectRepository
	verifier    services.CommandVerifier
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(projectRepo *repositories.ProjectRepository, verifier services.CommandVerifier) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:     make([]Worker, 0),
		projectRepo: projectRepo,
		verifier:    verifier,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// StartAll starts all workers based on environment configuration
func (wm *WorkerManager) StartAll() error {
	verifyWorkers := wm.getWorkerCount("VERIFY_WORKERS", 1)

	logger.Infof("Starting workers - Verify: %d", verifyWorkers)

	for i := 0; i < verifyWorkers; i++ {
		worker := NewVerifyWorker(fmt.Sprintf("verify-%d", i+1), wm.projectRepo, wm.verifier)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("Started %d total workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	// Cancel the context to signal all workers to stop
	wm.cancel()

	// Stop each worker
	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.Errorf("Error stopping worker %s: %v", worker.GetWorkerID(), err)
		}
	}

	// Wait for all workers to finish
	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// getWorkerCount reads worker count from environment variable with fallback
func (wm *WorkerManager) getWorkerCount(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return count
		}
		logger.Warnf("Invalid value for %s, using default: %d", envVar, defaultValue)
	}
	return defaultValue
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil {
			logger.Errorf("Worker %s stopped with error: %v", worker.GetWorkerID(), err)
		}
	}()
}
