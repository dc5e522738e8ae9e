package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// OcrPollJobName is the name of the OCR result polling job
const OcrPollJobName = "ocr_poll"

// ocrPollBatchSize caps how many processing documents one poll run checks
const ocrPollBatchSize = 50

// DocumentPoller defines the interface for polling pending OCR results.
// This interface allows the job to call the service without importing the
// service package directly.
type DocumentPoller interface {
	// PollProcessingDocuments checks the OCR provider for documents waiting on
	// a result and finalizes those that finished. Returns the number of
	// documents whose status changed.
	PollProcessingDocuments(ctx context.Context, limit int) (int, error)
}

// OcrPollJob polls the OCR provider for the results of submitted documents
// at a fixed interval.
type OcrPollJob struct {
	documents DocumentPoller
	logger    *zap.Logger
	timeout   time.Duration
}

// NewOcrPollJob creates a new OCR polling job
func NewOcrPollJob(documents DocumentPoller, logger *zap.Logger, timeout time.Duration) *OcrPollJob {
	return &OcrPollJob{
		documents: documents,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run executes one polling pass. Called by the scheduler.
func (j *OcrPollJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	changed, err := j.documents.PollProcessingDocuments(ctx, ocrPollBatchSize)
	if err != nil {
		j.logger.Error("ocr poll failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if changed > 0 {
		j.logger.Info("ocr poll completed",
			zap.Int("documents_finalized", changed),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterOcrPollJob registers the OCR polling job with the scheduler at a
// fixed interval.
func RegisterOcrPollJob(scheduler *Scheduler, documents DocumentPoller, logger *zap.Logger, interval, timeout time.Duration) error {
	job := NewOcrPollJob(documents, logger, timeout)
	return scheduler.AddJob(OcrPollJobName, fmt.Sprintf("@every %s", interval), job.Run)
}
