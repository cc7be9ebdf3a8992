// File: internal/expander/engine.go
package expander

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dataset-tools/dataset-expander/internal/dataset"
)

// Generator is the generation-service boundary the engine drives. The
// engine never retries transport errors itself; failed batches feed the
// consecutive-failure budget instead.
type Generator interface {
	// AnalyzeSample asks the service to describe the dataset sample.
	AnalyzeSample(ctx context.Context, prompt string) (string, error)

	// GenerateRows sends an expansion prompt and returns the raw response text.
	GenerateRows(ctx context.Context, prompt string) (string, error)
}

// FlushFunc persists the dataset's accepted rows to output storage.
type FlushFunc func(ds *dataset.Dataset) error

// State is the engine's lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Options configures one expansion run.
type Options struct {
	TargetRows             int    // Desired total row count T
	MaxBatchSize           int    // Upper bound on rows requested per batch
	SampleSize             int    // Most recent accepted rows used as few-shot context
	MaxConsecutiveFailures int    // Zero-yield batches tolerated before aborting
	FlushEvery             int    // Flush accepted rows every N batches (0 = only at end)
	SkipAnalysis           bool   // Skip the one-time analysis call
	AdditionalContext      string // Extra grounding text for the analysis prompt
	Retry                  RetryOptions
}

// Report summarizes the outcome of a run.
type Report struct {
	RunID       string
	State       State
	InitialRows int
	FinalRows   int
	TargetRows  int
	Batches     int
	RowsAdded   int
	Rejected    int
	Duplicates  int
	Reason      string
	Elapsed     time.Duration
}

// Engine owns the dataset for the duration of a run and drives the
// batch loop: prompt, generate, parse, dedup, append.
type Engine struct {
	gen    Generator
	opts   Options
	flush  FlushFunc
	logger *zap.SugaredLogger
	state  State

	started time.Time
}

// NewEngine creates an engine. flush may be nil when incremental
// persistence is not wanted; logger must not be nil.
func NewEngine(gen Generator, opts Options, flush FlushFunc, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		gen:    gen,
		opts:   opts,
		flush:  flush,
		logger: logger,
		state:  StateIdle,
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Run expands ds until it holds Options.TargetRows rows or the
// consecutive-failure budget is exhausted. Batches are strictly
// sequential: each prompt's few-shot context depends on rows accepted by
// prior batches. On abort or cancellation the accepted progress is
// flushed and reported, never discarded; the returned error is
// *ErrPartial or *ErrCancelled in those cases.
func (e *Engine) Run(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	e.started = time.Now()
	report := &Report{
		RunID:       uuid.NewString(),
		InitialRows: ds.Len(),
		TargetRows:  e.opts.TargetRows,
	}
	logger := e.logger.With("run_id", report.RunID)

	e.state = StateRunning

	if ds.Len() >= e.opts.TargetRows {
		logger.Infow("dataset already at or above target, nothing to expand",
			"rows", ds.Len(), "target", e.opts.TargetRows)
		return e.finish(report, ds, StateCompleted, "")
	}

	analysis := e.analyze(ctx, ds, logger)

	consecutiveFailures := 0
	batchesSinceFlush := 0

	for ds.Len() < e.opts.TargetRows {
		// Cancellation is honored between batches only; accepted rows
		// must survive it.
		if ctx.Err() != nil {
			report.Reason = "run cancelled"
			rep, finishErr := e.finish(report, ds, StateAborted, report.Reason)
			if finishErr != nil {
				return rep, finishErr
			}
			return rep, &ErrCancelled{Msg: "run cancelled between batches", Err: ctx.Err()}
		}

		batchSize := e.opts.TargetRows - ds.Len()
		if batchSize > e.opts.MaxBatchSize {
			batchSize = e.opts.MaxBatchSize
		}

		examples := ds.Tail(e.opts.SampleSize)
		prompt := BuildPrompt(ds.Schema, examples, batchSize, analysis)

		report.Batches++
		accepted, rejected, duplicates, err := e.runBatch(ctx, ds, prompt)
		report.Rejected += rejected
		report.Duplicates += duplicates
		report.RowsAdded += accepted

		if err != nil {
			logger.Warnw("generation call failed", "batch", report.Batches, "error", err)
		}

		if accepted == 0 {
			consecutiveFailures++
			logger.Warnw("batch yielded no accepted rows",
				"batch", report.Batches,
				"consecutive_failures", consecutiveFailures,
				"rejected", rejected,
				"duplicates", duplicates)

			if consecutiveFailures >= e.opts.MaxConsecutiveFailures {
				report.Reason = fmt.Sprintf("%d consecutive batches yielded no rows", consecutiveFailures)
				rep, finishErr := e.finish(report, ds, StateAborted, report.Reason)
				if finishErr != nil {
					return rep, finishErr
				}
				return rep, &ErrPartial{Reason: report.Reason, Final: ds.Len(), Target: e.opts.TargetRows}
			}
			if sleepErr := sleepBackoff(ctx, e.opts.Retry, consecutiveFailures); sleepErr != nil {
				report.Reason = "run cancelled"
				rep, finishErr := e.finish(report, ds, StateAborted, report.Reason)
				if finishErr != nil {
					return rep, finishErr
				}
				return rep, sleepErr
			}
			continue
		}

		consecutiveFailures = 0

		// The validator may accept more rows than requested; the target
		// is a hard upper bound on the dataset.
		if ds.Len() > e.opts.TargetRows {
			overshoot := ds.Len() - e.opts.TargetRows
			report.RowsAdded -= overshoot
			ds.Truncate(e.opts.TargetRows)
			logger.Debugw("trimmed overshoot", "rows", overshoot)
		}

		logger.Infow("batch accepted",
			"batch", report.Batches,
			"accepted", accepted,
			"rejected", rejected,
			"duplicates", duplicates,
			"rows", ds.Len(),
			"target", e.opts.TargetRows)

		batchesSinceFlush++
		if e.opts.FlushEvery > 0 && batchesSinceFlush >= e.opts.FlushEvery {
			if flushErr := e.doFlush(ds); flushErr != nil {
				report.Reason = "output write failed"
				report.State = StateAborted
				e.state = StateAborted
				return report, flushErr
			}
			batchesSinceFlush = 0
		}
	}

	rep, err := e.finish(report, ds, StateCompleted, "")
	if err != nil {
		return rep, err
	}
	logger.Infow("expansion completed",
		"rows_added", rep.RowsAdded,
		"final_rows", rep.FinalRows,
		"batches", rep.Batches,
		"elapsed", rep.Elapsed)
	return rep, nil
}

// runBatch performs one generate/parse/dedup/append cycle. A generation
// failure returns accepted == 0 with the classified error; malformed and
// duplicate entries are dropped and counted.
func (e *Engine) runBatch(ctx context.Context, ds *dataset.Dataset, prompt string) (accepted, rejected, duplicates int, err error) {
	raw, err := e.gen.GenerateRows(ctx, prompt)
	if err != nil {
		return 0, 0, 0, err
	}

	rows, rejected := ParseRows(raw, ds.Schema)
	for _, row := range rows {
		if ds.Append(row) {
			accepted++
		} else {
			duplicates++
		}
	}
	return accepted, rejected, duplicates, nil
}

// analyze performs the one-time dataset analysis that seeds every
// expansion prompt. Failure here is not fatal: expansion proceeds with an
// empty analysis.
func (e *Engine) analyze(ctx context.Context, ds *dataset.Dataset, logger *zap.SugaredLogger) string {
	if e.opts.SkipAnalysis {
		return ""
	}

	prompt := BuildAnalysisPrompt(ds.Schema, ds.Tail(e.opts.SampleSize), e.opts.AdditionalContext)
	analysis, err := e.gen.AnalyzeSample(ctx, prompt)
	if err != nil {
		logger.Warnw("dataset analysis failed, continuing without it", "error", err)
		return ""
	}
	logger.Infow("dataset analysis complete", "length", len(analysis))
	return analysis
}

func (e *Engine) finish(report *Report, ds *dataset.Dataset, state State, reason string) (*Report, error) {
	report.Elapsed = time.Since(e.started)
	if err := e.doFlush(ds); err != nil {
		report.State = StateAborted
		e.state = StateAborted
		report.Reason = "output write failed"
		return report, err
	}
	report.State = state
	report.Reason = reason
	report.FinalRows = ds.Len()
	e.state = state
	return report, nil
}

func (e *Engine) doFlush(ds *dataset.Dataset) error {
	if e.flush == nil {
		return nil
	}
	if err := e.flush(ds); err != nil {
		return fmt.Errorf("failed to persist accepted rows: %w", err)
	}
	return nil
}
