// Package dashboard runs the upload pipeline: archive, parser, projection.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/healthdash/internal/archive"
	"example.com/healthdash/internal/domain"
	"example.com/healthdash/internal/events"
	"example.com/healthdash/internal/observability"
	"example.com/healthdash/internal/parser"
	"example.com/healthdash/internal/projection"
)

// Config wires the pipeline stages. It replaces any process-wide settings.
type Config struct {
	Archive        archive.Config
	RecordTypes    []string
	PublishTimeout time.Duration
}

// Request carries the per-upload options.
type Request struct {
	Range domain.TimeRange
}

// Report is the render-ready result of one upload.
type Report struct {
	UploadID string
	Range    domain.TimeRange
	Total    int
	Skipped  int
	Filtered int
	Groups   []projection.Group
	Daily    projection.DailyTable
}

// Service orchestrates one upload at a time; it keeps no state between calls.
type Service struct {
	reader         *archive.Reader
	parseOpts      parser.Options
	publisher      events.Publisher
	publishTimeout time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher sends upload summaries to p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets the logger used for pipeline events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service.
func NewService(cfg Config, opts ...Option) *Service {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &Service{
		reader:         archive.NewReader(cfg.Archive),
		parseOpts:      parser.Options{Types: cfg.RecordTypes},
		publisher:      events.NoopPublisher{},
		publishTimeout: timeout,
		logger:         zap.NewNop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process turns archive bytes into a Report. Archive, encoding and markup
// errors abort the upload; field-level problems only raise Report.Skipped.
func (s *Service) Process(ctx context.Context, data []byte, req Request) (*Report, error) {
	started := s.now()
	uploadID := uuid.NewString()
	logger := s.logger.With(zap.String("upload_id", uploadID), zap.Int("archive_bytes", len(data)))

	rng := req.Range
	if rng == "" {
		rng = domain.RangeAll
	}

	report, parsed, err := s.run(ctx, data, rng)
	elapsed := s.now().Sub(started)
	if err != nil {
		category := domain.Category(err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			category = "canceled"
		}
		observability.RecordUpload(category, elapsed)
		logger.Warn("upload rejected", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	report.UploadID = uploadID

	observability.RecordUpload(observability.OutcomeOK, elapsed)
	observability.RecordParsed(parsed, report.Skipped, report.Filtered, s.now())
	logger.Info("upload processed",
		zap.String("range", string(rng)),
		zap.Int("records", report.Total),
		zap.Int("skipped", report.Skipped),
		zap.Int("filtered", report.Filtered),
		zap.Int("groups", len(report.Groups)),
		zap.Duration("elapsed", elapsed))

	s.publish(ctx, logger, report)
	return report, nil
}

// run also returns how many records the parser produced before the time
// range was applied.
func (s *Service) run(ctx context.Context, data []byte, rng domain.TimeRange) (*Report, int, error) {
	text, err := s.reader.Read(data)
	if err != nil {
		return nil, 0, err
	}

	parsed, err := parser.Parse(ctx, text, s.parseOpts)
	if err != nil {
		return nil, 0, err
	}

	records := projection.Filter(parsed.Records, rng)
	_, groups := projection.Project(records)
	return &Report{
		Range:    rng,
		Total:    len(records),
		Skipped:  parsed.Skipped,
		Filtered: parsed.Filtered,
		Groups:   groups,
		Daily:    projection.Daily(groups),
	}, len(parsed.Records), nil
}

// publish is best effort; a broker outage never fails an upload.
func (s *Service) publish(ctx context.Context, logger *zap.Logger, report *Report) {
	counts := make(map[string]int, len(report.Groups))
	for _, g := range report.Groups {
		counts[g.Type] = len(g.Rows)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	err := s.publisher.Publish(pubCtx, events.UploadProcessed{
		UploadID:    report.UploadID,
		Range:       string(report.Range),
		RecordCount: report.Total,
		Skipped:     report.Skipped,
		Filtered:    report.Filtered,
		TypeCounts:  counts,
		ProcessedAt: s.now().UTC(),
	})
	if err != nil {
		logger.Warn("upload summary not published", zap.Error(err))
	}
}
