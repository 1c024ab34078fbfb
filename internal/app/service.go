// Package service runs the excess mortality analysis and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/excess/internal/adapters/mq/queue"
	workerpool "github.com/okian/excess/internal/adapters/mq/worker"
	repository "github.com/okian/excess/internal/adapters/repository"
	"github.com/okian/excess/internal/domain/aggregate"
	"github.com/okian/excess/internal/domain/asmr"
	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/selection"
	"github.com/okian/excess/internal/domain/types"
	"github.com/okian/excess/pkg/logger"
	"github.com/okian/excess/pkg/metrics"
)

// rankingSize is the number of stored baselines listed in the report.
const rankingSize = 3

// Loader supplies raw mortality records.
type Loader interface {
	Load(ctx context.Context) ([]model.Record, error)
}

// Analysis holds the parameters of one analysis run.
type Analysis struct {
	ReferenceStart    time.Time
	CoverageThreshold float64
	FallbackEnd       time.Time
	Selection         selection.Config
	// EvaluationYear starts the held-out period; 0 uses the latest data year.
	EvaluationYear  int
	CumulativeStart time.Time
	FixedBaselines  []model.Window
	Labels          map[string][]string
}

// DefaultAnalysis returns the parameters used when none are configured.
func DefaultAnalysis() Analysis {
	return Analysis{
		ReferenceStart:    calendar.Date(2001, time.January, 1),
		CoverageThreshold: 0.8,
		FallbackEnd:       calendar.Date(2025, time.June, 25),
		Selection:         selection.DefaultConfig(),
		CumulativeStart:   calendar.Date(2020, time.January, 1),
		FixedBaselines:    selection.DefaultFixedWindows(),
	}
}

// run is the immutable outcome of one analysis.
type run struct {
	report    types.Report
	countries aggregate.Countries
	aggregate []model.Point
	store     repository.Store
	optimal   selection.Result
	cutoff    aggregate.Cutoff
	grid      selection.Config
}

// Service implements the API dependencies for the excess mortality engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	source Loader
	queue  *jobqueue.InMemoryQueue
	pool   *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	analysis    Analysis

	// State
	started bool
	current *run

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of window evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets the record loader.
func WithSource(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.source = l
		}
	}
}

// WithAnalysis replaces the analysis parameters.
func WithAnalysis(a Analysis) Option {
	return func(s *Service) {
		s.analysis = a
	}
}

// New constructs a Service. A source must be supplied with WithSource before Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		analysis:    DefaultAnalysis(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start brings up the worker pool and runs the first analysis.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.source == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no data source configured", model.ErrInvalidArgument)
	}

	s.logger.Info(ctx, "starting excess service...")
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.WithPoolLogger(s.logger.Named("pool")))
	s.pool.Start(ctx)
	s.started = true
	s.mu.Unlock()

	if err := s.Analyze(ctx); err != nil {
		s.Stop()
		return err
	}

	s.logger.Info(ctx, "excess service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Analyze loads the records and recomputes every derived series and baseline.
// The previous result stays visible until the new one is complete.
func (s *Service) Analyze(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return fmt.Errorf("analyze: %w", workerpool.ErrNotStarted)
	}

	r, err := s.analyze(ctx)
	if err != nil {
		metrics.RecordAnalysisRun("error")
		metrics.RecordErrorByComponent("service", "analysis_failed")
		s.logger.Error(ctx, "analysis failed", logger.Error(err))
		return err
	}
	metrics.RecordAnalysisRun("ok")

	s.mu.Lock()
	s.current = r
	s.mu.Unlock()
	return nil
}

func (s *Service) analyze(ctx context.Context) (*run, error) {
	a := s.analysis
	started := time.Now()
	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID))

	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	metrics.RecordRowsIngested(len(records))

	obs, rejected := asmr.Standardize(records)
	for reason, n := range rejected {
		metrics.RecordRowsRejected(reason, n)
	}
	log.Info(ctx, "records standardized",
		logger.Int("rows", len(records)),
		logger.Int("kept", len(obs)),
		logger.Int("rejected", rejected.Total()),
	)

	grouped := aggregate.GroupByCountry(obs)
	cutoff := aggregate.FindOptimalEndDate(grouped, a.ReferenceStart, a.CoverageThreshold, a.FallbackEnd)
	countries := aggregate.Filter(grouped, a.ReferenceStart, cutoff.Date)
	metrics.UpdateCountriesKept(len(countries))
	if cutoff.Fallback {
		log.Warn(ctx, "coverage threshold not met, using fallback end date",
			logger.Time("end_date", cutoff.Date))
	}
	log.Info(ctx, "countries kept",
		logger.Int("countries", len(countries)),
		logger.Int("eligible", cutoff.Eligible),
		logger.String("end_date", types.Day(cutoff.Date)),
	)

	points := aggregate.Aggregate(countries)
	period, ok := selection.EvaluationPeriod(points, a.EvaluationYear)
	if !ok {
		return nil, fmt.Errorf("%w: no aggregate points", model.ErrNoBaseline)
	}

	selStart := time.Now()
	optimal, err := selection.Select(ctx, s.pool, points, a.Selection, period)
	metrics.RecordSelectionDuration(float64(time.Since(selStart).Milliseconds()))
	metrics.UpdateCandidateWindows(optimal.Evaluated)
	if err != nil {
		return nil, fmt.Errorf("select baseline: %w", err)
	}
	metrics.UpdateSelectionRMSE(optimal.RMSE)
	log.Info(ctx, "baseline selected",
		logger.String("window", optimal.Window.Label()),
		logger.Float64("rmse", optimal.RMSE),
		logger.Int("candidates", optimal.Evaluated),
	)

	store, err := s.fitFixed(ctx, points, period, optimal)
	if err != nil {
		return nil, err
	}
	top, err := store.TopN(ctx, rankingSize)
	if err != nil {
		return nil, err
	}
	ranking := make([]string, len(top))
	for i, e := range top {
		ranking[i] = e.Window.Label()
	}

	return &run{
		report: types.Report{
			RunID:        runID,
			StartedAt:    started.UTC(),
			DurationMS:   time.Since(started).Milliseconds(),
			Rows:         len(records),
			Rejected:     rejected,
			Observations: len(obs),
			Countries:    len(countries),
			EndDate:      types.Day(cutoff.Date),
			Fallback:     cutoff.Fallback,
			Evaluation:   types.Period{From: types.Day(period.Start), To: types.Day(period.End)},
			Optimal:      optimal.Window.Label(),
			RMSE:         types.Float(optimal.RMSE),
			Candidates:   optimal.Evaluated,
			Ranking:      ranking,
			Workers:      s.pool.Size(),
		},
		countries: countries,
		aggregate: points,
		store:     store,
		optimal:   optimal,
		cutoff:    cutoff,
		grid:      a.Selection,
	}, nil
}

// fitFixed scores the configured windows on the worker pool and stores them
// with the selected baseline. Windows that cannot be fitted are logged and skipped.
func (s *Service) fitFixed(ctx context.Context, points []model.Point, period selection.Period, optimal selection.Result) (repository.Store, error) {
	evals, err := s.pool.EvaluateAll(ctx, points, period, s.analysis.FixedBaselines)
	if err != nil {
		return nil, fmt.Errorf("fit fixed baselines: %w", err)
	}

	entries := make([]repository.Entry, 0, len(evals)+1)
	for _, e := range evals {
		if e.Err != nil {
			s.logger.Warn(ctx, "fixed baseline could not be fitted",
				logger.String("window", e.Window.Label()),
				logger.Error(e.Err),
			)
			continue
		}
		entries = append(entries, repository.Entry{Window: e.Window, Baseline: e.Baseline, RMSE: e.RMSE})
	}
	entries = append(entries, repository.Entry{
		Window:   optimal.Window,
		Baseline: optimal.Baseline,
		RMSE:     optimal.RMSE,
		Optimal:  true,
	})
	return repository.New(entries, repository.WithLabels(s.analysis.Labels)), nil
}

// Stop gracefully shuts down the worker pool.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping excess service...")
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool did not drain, stopping workers", logger.Error(err))
			s.pool.Stop()
		}
	}
	s.started = false
	s.logger.Info(ctx, "excess service stopped")
}

// snapshot returns the latest completed analysis.
func (s *Service) snapshot() (*run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, model.ErrNotReady
	}
	return s.current, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}
	if s.started {
		queueLen := s.queue.Len(context.Background())
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}
	if s.current != nil {
		stats["runId"] = s.current.report.RunID
		stats["baselines"] = s.current.store.Count(context.Background())
	}
	return stats
}
