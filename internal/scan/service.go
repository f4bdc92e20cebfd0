package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/internal/observability"
	"ai-inclusion-checker/internal/store"
	"ai-inclusion-checker/pkg/logger"
)

const DefaultSyncTimeout = 25 * time.Second

var errPanic = errors.New("pipeline panic")

// Service owns the lifecycle of scan records: it is the only writer of a
// record between creation and its terminal state.
type Service struct {
	pipeline    *Pipeline
	repo        store.Repository
	metrics     *observability.Metrics
	logger      logger.Logger
	syncTimeout time.Duration
	now         func() time.Time
	newID       func() string

	jobs sync.WaitGroup
}

type Option func(*Service)

func WithSyncTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.syncTimeout = d
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(p *Pipeline, repo store.Repository, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		pipeline:    p,
		repo:        repo,
		logger:      log.With(map[string]interface{}{"component": "scan-service"}),
		syncTimeout: DefaultSyncTimeout,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit validates req and stores a queued record for it.
func (s *Service) Submit(ctx context.Context, req models.ScanRequest) (models.ScanRecord, error) {
	req, err := NormalizeRequest(req)
	if err != nil {
		return models.ScanRecord{}, err
	}
	if req.SessionID == "" {
		req.SessionID = s.newID()
	}

	now := s.now()
	rec := models.ScanRecord{
		RequestID:      s.newID(),
		ScanToken:      s.newID(),
		Domain:         req.Domain,
		Scope:          req.Scope,
		City:           req.City,
		Audience:       req.Audience,
		SessionID:      req.SessionID,
		Status:         models.StatusQueued,
		Confidence:     models.ConfidenceMedium,
		Queries:        []models.Query{},
		StructuralGaps: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, rec.ScanToken, rec); err != nil {
		return models.ScanRecord{}, fmt.Errorf("create record: %w", err)
	}
	s.logger.Info("scan queued", map[string]interface{}{"scanToken": rec.ScanToken, "domain": rec.Domain})
	return rec, nil
}

// Start queues a scan and runs it in the background. Poll Get with the
// returned token for progress.
func (s *Service) Start(ctx context.Context, req models.ScanRequest) (models.ScanRecord, error) {
	rec, err := s.Submit(ctx, req)
	if err != nil {
		return rec, err
	}
	jobCtx := context.WithoutCancel(ctx)
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		s.execute(jobCtx, rec.ScanToken, requestOf(rec))
	}()
	return rec, nil
}

// RunSync queues a scan and runs it within the sync timeout, returning the
// terminal record. The error is non-nil only when the request is invalid or
// the repository fails.
func (s *Service) RunSync(ctx context.Context, req models.ScanRequest) (models.ScanRecord, error) {
	rec, err := s.Submit(ctx, req)
	if err != nil {
		return rec, err
	}
	runCtx, cancel := context.WithTimeout(ctx, s.syncTimeout)
	defer cancel()
	s.execute(runCtx, rec.ScanToken, requestOf(rec))
	return s.repo.Get(context.WithoutCancel(ctx), rec.ScanToken)
}

func (s *Service) Get(ctx context.Context, token string) (models.ScanRecord, error) {
	return s.repo.Get(ctx, token)
}

// Wait blocks until every background scan has finished.
func (s *Service) Wait() {
	s.jobs.Wait()
}

func requestOf(rec models.ScanRecord) models.ScanRequest {
	return models.ScanRequest{
		Domain:    rec.Domain,
		Scope:     rec.Scope,
		City:      rec.City,
		Audience:  rec.Audience,
		SessionID: rec.SessionID,
	}
}

func (s *Service) execute(ctx context.Context, token string, req models.ScanRequest) {
	start := time.Now()
	log := s.logger.With(map[string]interface{}{"scanToken": token, "domain": req.Domain})
	persistCtx := context.WithoutCancel(ctx)

	if err := s.repo.Update(persistCtx, token, func(r *models.ScanRecord) {
		if r.Status.Terminal() {
			return
		}
		r.Status = models.StatusRunning
		r.UpdatedAt = s.now()
	}); err != nil {
		log.Error("failed to mark scan running", map[string]interface{}{"error": err})
	}
	log.Debug("scan running", nil)

	res, err := s.run(ctx, req)
	status := models.StatusComplete
	if err != nil {
		status = models.StatusFailed
		if UserMessage(err) == MsgInternal {
			log.Error("scan failed", map[string]interface{}{"error": err})
		} else {
			log.Info("scan failed", map[string]interface{}{"reason": err.Error()})
		}
	}

	if uerr := s.repo.Update(persistCtx, token, func(r *models.ScanRecord) {
		if r.Status.Terminal() {
			return
		}
		r.UpdatedAt = s.now()
		if err != nil {
			r.Status = models.StatusFailed
			r.Error = UserMessage(err)
			return
		}
		apply(r, res)
	}); uerr != nil {
		log.Error("failed to persist scan result", map[string]interface{}{"error": uerr})
	}

	s.metrics.RecordScan(persistCtx, string(status), time.Since(start))
	if err == nil {
		log.Info("scan complete", map[string]interface{}{
			"readinessScore": res.Score.ReadinessScore,
			"demo":           res.UsedDemoContent,
		})
	}
}

func (s *Service) run(ctx context.Context, req models.ScanRequest) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return s.pipeline.Run(ctx, req)
}

func apply(r *models.ScanRecord, res Result) {
	score := res.Score
	analysis := res.Analysis
	r.Status = models.StatusComplete
	r.Error = ""
	r.Category = res.CategoryInfo.Category
	r.Persona = res.CategoryInfo.Persona
	r.ReadinessScore = score.ReadinessScore
	r.StatusLabel = score.StatusLabel
	r.Confidence = res.Confidence
	r.ExampleQuery = res.ExampleQuery
	r.Queries = res.Queries
	r.StructuralGaps = res.Gaps
	r.ScoreBreakdown = &score
	r.StructuralAnalysis = &analysis
}
