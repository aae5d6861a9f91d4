package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/crimecast/crimecast/internal/analytics"
	"github.com/crimecast/crimecast/internal/analytics/forecast"
	"github.com/crimecast/crimecast/internal/cache"
	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/logging"
	"github.com/crimecast/crimecast/internal/metrics"
	"github.com/crimecast/crimecast/internal/queue"
	"github.com/crimecast/crimecast/internal/utils"
)

// SeriesSource provides the rows of one jurisdiction and category
type SeriesSource interface {
	Filter(jurisdiction, category string) []analytics.Row
	Version() string
}

// ForecastService handles forecasting business logic
type ForecastService struct {
	logger    *logging.Logger
	source    SeriesSource
	config    config.ForecastConfig
	estimator forecast.EstimatorConfig
	specs     []forecast.ModelSpec
	cache     cache.Cache
	publisher queue.Publisher
	metrics   *metrics.Metrics
	subject   string

	fitTimeout time.Duration
}

// NewForecastService creates a new ForecastService. cache, publisher and
// metrics may be nil.
func NewForecastService(
	logger *logging.Logger,
	source SeriesSource,
	cfg config.ForecastConfig,
	c cache.Cache,
	publisher queue.Publisher,
	m *metrics.Metrics,
) *ForecastService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if c == nil {
		c = cache.NewNoop()
	}

	fitTimeout := cfg.FitTimeout
	if fitTimeout <= 0 {
		fitTimeout = utils.DefaultFitTimeout
	}

	return &ForecastService{
		logger: logger,
		source: source,
		config: cfg,
		estimator: forecast.EstimatorConfig{
			MaxIterations:     cfg.MaxIterations,
			Tolerance:         cfg.Tolerance,
			GradientThreshold: cfg.GradientThreshold,
			MinMargin:         cfg.MinMargin,
		},
		specs:      forecast.DefaultSpecs(),
		cache:      c,
		publisher:  publisher,
		metrics:    m,
		subject:    utils.SubjectForecastCompleted,
		fitTimeout: fitTimeout,
	}
}

// WithSubject sets the subject forecast events are published to
func (s *ForecastService) WithSubject(subject string) *ForecastService {
	if subject != "" {
		s.subject = subject
	}
	return s
}

// Specs returns the model specs the service fits, in reporting order
func (s *ForecastService) Specs() []forecast.ModelSpec {
	return append([]forecast.ModelSpec(nil), s.specs...)
}

// ForecastRequest represents a forecast request
type ForecastRequest struct {
	Jurisdiction string
	Category     string
	Horizon      int
}

// ForecastResponse represents the complete forecast response
type ForecastResponse struct {
	Jurisdiction   string            `json:"jurisdiction"`
	Category       string            `json:"category"`
	Horizon        int               `json:"horizon"`
	DatasetVersion string            `json:"dataset_version"`
	Observed       []analytics.Point `json:"observed"`
	Gaps           []int             `json:"gaps,omitempty"`
	Families       []FamilyForecast  `json:"families"`
	Cached         bool              `json:"cached"`
	LatencyMs      int64             `json:"latency_ms"`
}

// AllFailed reports whether no family produced a forecast
func (r *ForecastResponse) AllFailed() bool {
	return (&RunResult{Families: r.Families}).AllFailed()
}

// ForecastEvent is published after every computed forecast
type ForecastEvent struct {
	RequestID      string         `json:"request_id,omitempty"`
	Jurisdiction   string         `json:"jurisdiction"`
	Category       string         `json:"category"`
	Horizon        int            `json:"horizon"`
	DatasetVersion string         `json:"dataset_version"`
	Families       []FamilyStatus `json:"families"`
	LatencyMs      int64          `json:"latency_ms"`
	CompletedAt    time.Time      `json:"completed_at"`
}

// FamilyStatus summarises one family in a ForecastEvent
type FamilyStatus struct {
	Family string `json:"family"`
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
}

// Execute runs both model families for the requested selection
func (s *ForecastService) Execute(ctx context.Context, req *ForecastRequest) (resp *ForecastResponse, err error) {
	startExec := time.Now()
	logger := s.logger.WithContext(ctx)

	defer func() {
		s.metrics.ObserveRequest(requestOutcome(resp, err))
	}()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	rows := s.source.Filter(req.Jurisdiction, req.Category)
	series, err := analytics.BuildSeries(rows)
	if err != nil {
		return nil, seriesError(req, err)
	}

	key := cache.Key(s.source.Version(), req.Jurisdiction, req.Category, strconv.Itoa(req.Horizon))
	if cached, ok := s.lookup(ctx, key); ok {
		cached.Cached = true
		cached.LatencyMs = time.Since(startExec).Milliseconds()
		logger.Debug("Forecast served from cache",
			"jurisdiction", req.Jurisdiction,
			"category", req.Category,
			"horizon", req.Horizon)
		return cached, nil
	}

	result, err := s.Run(ctx, series, req.Horizon)
	if err != nil {
		return nil, &ServiceError{Code: CodeInvalidHorizon, Message: err.Error(), Err: err}
	}

	resp = &ForecastResponse{
		Jurisdiction:   req.Jurisdiction,
		Category:       req.Category,
		Horizon:        req.Horizon,
		DatasetVersion: s.source.Version(),
		Observed:       series.Points(),
		Gaps:           series.Gaps(),
		Families:       result.Families,
		LatencyMs:      time.Since(startExec).Milliseconds(),
	}

	if !resp.AllFailed() {
		s.store(ctx, key, resp)
	}
	s.publish(ctx, resp)

	logger.Info("Forecast completed",
		"jurisdiction", req.Jurisdiction,
		"category", req.Category,
		"horizon", req.Horizon,
		"observations", series.Len(),
		"all_failed", resp.AllFailed(),
		"latency_ms", resp.LatencyMs)

	return resp, nil
}

func (s *ForecastService) validate(req *ForecastRequest) error {
	if req == nil || req.Jurisdiction == "" || req.Category == "" {
		return NewServiceError(CodeInvalidRequest, "jurisdiction and category are required")
	}

	maxHorizon := s.config.MaxHorizon
	if maxHorizon <= 0 {
		maxHorizon = utils.MaxHorizon
	}
	if req.Horizon <= 0 || req.Horizon > maxHorizon {
		return &ServiceError{
			Code:    CodeInvalidHorizon,
			Message: fmt.Sprintf("horizon must be between 1 and %d, got %d", maxHorizon, req.Horizon),
			Details: map[string]interface{}{"max_horizon": maxHorizon},
			Err:     analytics.ErrInvalidHorizon,
		}
	}
	return nil
}

func seriesError(req *ForecastRequest, err error) error {
	if errors.Is(err, analytics.ErrEmptySeries) {
		return &ServiceError{
			Code:    CodeSeriesNotFound,
			Message: fmt.Sprintf("no observations for jurisdiction %q and category %q", req.Jurisdiction, req.Category),
			Err:     err,
		}
	}
	return &ServiceError{
		Code:    CodeInvalidSeries,
		Message: err.Error(),
		Details: map[string]interface{}{"kind": string(analytics.KindOf(err))},
		Err:     err,
	}
}

func (s *ForecastService) lookup(ctx context.Context, key string) (*ForecastResponse, bool) {
	cctx, cancel := context.WithTimeout(ctx, utils.CacheOperationTimeout)
	defer cancel()

	data, ok, err := s.cache.Get(cctx, key)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Cache lookup failed", "key", key, "error", err)
		s.metrics.ObserveCache(false)
		return nil, false
	}
	s.metrics.ObserveCache(ok)
	if !ok {
		return nil, false
	}

	var resp ForecastResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		s.logger.WithContext(ctx).Warn("Discarding unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	return &resp, true
}

func (s *ForecastService) store(ctx context.Context, key string, resp *ForecastResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Failed to encode forecast for cache", "error", err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, utils.CacheOperationTimeout)
	defer cancel()
	if err := s.cache.Set(cctx, key, data); err != nil {
		s.logger.WithContext(ctx).Warn("Cache store failed", "key", key, "error", err)
	}
}

func (s *ForecastService) publish(ctx context.Context, resp *ForecastResponse) {
	if s.publisher == nil {
		return
	}

	event := ForecastEvent{
		RequestID:      logging.RequestID(ctx),
		Jurisdiction:   resp.Jurisdiction,
		Category:       resp.Category,
		Horizon:        resp.Horizon,
		DatasetVersion: resp.DatasetVersion,
		LatencyMs:      resp.LatencyMs,
		CompletedAt:    time.Now().UTC(),
	}
	for _, f := range resp.Families {
		status := FamilyStatus{Family: f.Family, Status: f.Status}
		if f.Error != nil {
			status.Code = f.Error.Code
		}
		event.Families = append(event.Families, status)
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Failed to encode forecast event", "error", err)
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.PublishTimeout)
	defer cancel()
	err = s.publisher.Publish(pctx, s.subject, data)
	s.metrics.ObservePublish(err)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Failed to publish forecast event", "subject", s.subject, "error", err)
	}
}

func requestOutcome(resp *ForecastResponse, err error) string {
	var svcErr *ServiceError
	switch {
	case errors.As(err, &svcErr):
		return svcErr.Code
	case err != nil:
		return "ERROR"
	case resp.AllFailed():
		return "ALL_FAILED"
	default:
		return "OK"
	}
}
