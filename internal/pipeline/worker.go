package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Worker processes a single analysis job.
type Worker struct {
	processor *Processor
	log       *slog.Logger
	now       func() time.Time
}

func NewWorker(processor *Processor, log *slog.Logger) *Worker {
	return &Worker{
		processor: processor,
		log:       log,
		now:       time.Now,
	}
}

// Process runs the analysis for a job and records the outcome on it. A job
// whose documents all failed still carries a valid, empty result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "collection", job.Collection)

	inputs := job.Inputs()
	job.SetStatus(StatusParsing, "parsing")

	res, failures := w.processor.Analyze(ctx, AnalyzeRequest{
		Persona:   job.Persona,
		Job:       job.JobToBeDone,
		Documents: inputs,
		Timestamp: w.now(),
		Progress: func(filename string, err error) {
			if err != nil {
				job.AddError(fmt.Sprintf("%s: %s", filename, err))
			}
			if job.IncrDocumentsProcessed() == len(inputs) {
				job.SetStatus(StatusRanking, "ranking")
			}
		},
	})
	job.SetResult(res)

	switch {
	case len(inputs) > 0 && len(failures) == len(inputs):
		log.Error("no readable documents", "failed", len(failures))
		job.SetStatus(StatusFailed, "parsing")
	case len(failures) > 0:
		log.Warn("analysis finished with errors", "failed", len(failures))
		job.SetStatus(StatusPartial, "done")
	default:
		log.Info("analysis finished", "sections", len(res.ExtractedSections))
		job.SetStatus(StatusCompleted, "done")
	}
}
