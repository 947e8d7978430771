package incidents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/common"
	"github.com/richxcame/scamwatch/pkg/config"
	"github.com/richxcame/scamwatch/pkg/eventbus"
	"github.com/richxcame/scamwatch/pkg/logger"
	"github.com/richxcame/scamwatch/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	topN            = 5
	highRiskMinimum = 80
)

// Service scores incidents loaded from the repository
type Service struct {
	repo   RepositoryInterface
	engine *risk.Engine
	cfg    config.RiskConfig
	cache  BatchCache
	events eventbus.Publisher
	tracer trace.Tracer
}

// NewService creates a new risk service
func NewService(repo RepositoryInterface, engine *risk.Engine, cfg config.RiskConfig) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		cfg:    cfg,
		tracer: tracing.Tracer("incidents"),
	}
}

// WithCache enables batch memoisation
func (s *Service) WithCache(cache BatchCache) *Service {
	s.cache = cache
	return s
}

// WithPublisher enables event publication after backfills
func (s *Service) WithPublisher(p eventbus.Publisher) *Service {
	s.events = p
	return s
}

func (s *Service) listAll(ctx context.Context) ([]risk.Incident, error) {
	incidents, _, err := s.repo.ListIncidents(ctx, ListParams{Limit: s.cfg.ListLimit})
	if err != nil {
		return nil, common.NewInternalError("failed to list reports", err)
	}
	return incidents, nil
}

// listEvery pages through every stored report, newest first. The total is
// the count reported by the last page.
func (s *Service) listEvery(ctx context.Context) ([]risk.Incident, int64, error) {
	pageSize := s.cfg.BackfillPageSize
	if pageSize <= 0 {
		pageSize = s.cfg.ListLimit
	}

	var all []risk.Incident
	var total int64
	for {
		page, count, err := s.repo.ListIncidents(ctx, ListParams{Limit: pageSize, Offset: len(all)})
		if err != nil {
			return nil, 0, common.NewInternalError("failed to list reports", err)
		}
		total = count
		all = append(all, page...)
		if len(page) < pageSize || int64(len(all)) >= total {
			return all, total, nil
		}
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetRiskScore scores one report against its neighbours among the listed
// reports.
func (s *Service) GetRiskScore(ctx context.Context, reportID string) (*ScoredIncident, error) {
	ctx, span := s.tracer.Start(ctx, "incidents.GetRiskScore", trace.WithAttributes(attribute.String("report.id", reportID)))
	defer span.End()

	all, err := s.listAll(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	target, err := s.findTarget(ctx, reportID, all)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	neighbors := s.engine.FindNeighbors(*target, all, s.cfg.NeighborRadiusKm)
	score := s.engine.ComputeRiskScore(*target, neighbors)
	riskScoresComputed.WithLabelValues(modeSingle).Inc()

	span.SetAttributes(
		attribute.Int("risk.score", score.Score),
		attribute.Int("risk.neighbors", len(neighbors)),
	)

	return &ScoredIncident{Incident: *target, Score: score, Neighbors: neighbors}, nil
}

// findTarget looks for reportID in the listed window first, then asks the
// repository directly for reports older than the window.
func (s *Service) findTarget(ctx context.Context, reportID string, all []risk.Incident) (*risk.Incident, error) {
	for i := range all {
		if all[i].ID == reportID {
			return &all[i], nil
		}
	}

	incident, err := s.repo.GetIncidentByID(ctx, reportID)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, common.NewInternalError("failed to get report", err)
	}
	return incident, nil
}

// ComputeBatch scores every listed report, reusing a cached batch when the
// snapshot is unchanged.
func (s *Service) ComputeBatch(ctx context.Context) (map[string]risk.RiskScore, []risk.Incident, error) {
	ctx, span := s.tracer.Start(ctx, "incidents.ComputeBatch")
	defer span.End()

	all, err := s.listAll(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, nil, err
	}
	span.SetAttributes(attribute.Int("incidents.count", len(all)))

	if s.cache != nil {
		scores, ok, err := s.cache.Get(ctx, all)
		switch {
		case err != nil:
			riskCacheLookups.WithLabelValues("error").Inc()
			logger.WithContext(ctx).Warn("Risk cache read failed", zap.Error(err))
		case ok:
			riskCacheLookups.WithLabelValues("hit").Inc()
			riskScoresComputed.WithLabelValues(modeCached).Add(float64(len(scores)))
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return scores, all, nil
		default:
			riskCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	mode := modeBatch
	start := time.Now()
	var scores map[string]risk.RiskScore
	if s.cfg.SpatialIndex {
		mode = modeIndexed
		scores = s.engine.ComputeIndexedBatchRiskScores(all)
	} else {
		scores = s.engine.ComputeBatchRiskScores(all)
	}
	riskBatchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	riskScoresComputed.WithLabelValues(mode).Add(float64(len(scores)))

	if s.cache != nil {
		if err := s.cache.Set(ctx, all, scores); err != nil {
			logger.WithContext(ctx).Warn("Risk cache write failed", zap.Error(err))
		}
	}

	return scores, all, nil
}

// ListReports returns a filtered page of reports with scores taken from the
// full batch, so a page never changes a report's neighbourhood.
func (s *Service) ListReports(ctx context.Context, params ListParams) ([]ReportResponse, int64, error) {
	page, total, err := s.repo.ListIncidents(ctx, params)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list reports", err)
	}
	if len(page) == 0 {
		return []ReportResponse{}, total, nil
	}

	scores, all, err := s.ComputeBatch(ctx)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ReportResponse, len(page))
	for i := range page {
		score, ok := scores[page[i].ID]
		if !ok {
			// outside the scoring window
			score = s.engine.ComputeRiskScore(page[i], s.engine.FindNeighbors(page[i], all, s.cfg.NeighborRadiusKm))
		}
		out[i] = ReportResponse{Incident: page[i], RiskScore: score.Score, RiskLevel: score.Level}
	}
	return out, total, nil
}

// Statistics summarises the listed reports
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	ctx, span := s.tracer.Start(ctx, "incidents.Statistics")
	defer span.End()

	scores, all, err := s.ComputeBatch(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return buildStatistics(all, scores), nil
}

// ScamMeter computes the credibility score of one report
func (s *Service) ScamMeter(ctx context.Context, reportID string) (*risk.ScamMeter, error) {
	ctx, span := s.tracer.Start(ctx, "incidents.ScamMeter", trace.WithAttributes(attribute.String("report.id", reportID)))
	defer span.End()

	all, err := s.listAll(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	target, err := s.findTarget(ctx, reportID, all)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	// reports carry no moderation, consistency or dispute signals
	meter := risk.ComputeScamMeterScore(risk.ScamMeterInput{
		Incident:           *target,
		CorroborationCount: risk.CorroborationCount(*target, all),
	})
	return &meter, nil
}

// Backfill pages through every stored report, computes every score and
// stores it on the reports. With dryRun set nothing is written and no event
// is published.
func (s *Service) Backfill(ctx context.Context, dryRun bool) (*BackfillSummary, error) {
	ctx, span := s.tracer.Start(ctx, "incidents.Backfill", trace.WithAttributes(attribute.Bool("dry_run", dryRun)))
	defer span.End()

	start := time.Now()

	all, total, err := s.listEvery(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	var scores map[string]risk.RiskScore
	if s.cfg.SpatialIndex {
		scores = s.engine.ComputeIndexedBatchRiskScores(all)
	} else {
		scores = s.engine.ComputeBatchRiskScores(all)
	}
	riskScoresComputed.WithLabelValues(modeBatch).Add(float64(len(scores)))

	summary := summarize(all, scores)
	summary.Total = total
	summary.DryRun = dryRun
	if int64(summary.Processed) < total {
		logger.WithContext(ctx).Warn("Backfill scored fewer reports than are stored",
			zap.Int64("total", total),
			zap.Int("processed", summary.Processed),
		)
	}

	if !dryRun && len(scores) > 0 {
		updated, err := s.repo.UpdateRiskScores(ctx, scores)
		if err != nil {
			recordSpanError(span, err)
			return nil, common.NewInternalError("failed to store risk scores", err)
		}
		summary.Persisted = updated

		if s.cache != nil {
			if _, err := s.cache.Invalidate(ctx); err != nil {
				logger.WithContext(ctx).Warn("Risk cache invalidation failed", zap.Error(err))
			}
		}

		if s.events != nil {
			if err := s.events.Publish(ctx, SubjectRiskScoresUpdated, EventTypeRiskScoresUpdate, summary); err != nil {
				logger.WithContext(ctx).Warn("Failed to publish risk update event", zap.Error(err))
			}
		}
	}

	summary.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("incidents.processed", summary.Processed))
	return summary, nil
}

// summarize computes backfill statistics over scores
func summarize(all []risk.Incident, scores map[string]risk.RiskScore) *BackfillSummary {
	summary := &BackfillSummary{Processed: len(scores)}
	if len(scores) == 0 {
		return summary
	}

	byID := make(map[string]*risk.Incident, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	sum := 0
	summary.MinScore = 100
	var critical []HighRiskIncident
	for id, score := range scores {
		sum += score.Score
		summary.MinScore = min(summary.MinScore, score.Score)
		summary.MaxScore = max(summary.MaxScore, score.Score)

		switch {
		case score.Score >= 80:
			summary.Levels.Critical++
		case score.Score >= 60:
			summary.Levels.High++
		case score.Score >= 40:
			summary.Levels.Medium++
		default:
			summary.Levels.Low++
		}

		if score.Score >= highRiskMinimum {
			entry := HighRiskIncident{ID: id, Score: score.Score}
			if inc, ok := byID[id]; ok {
				entry.Category = inc.Category
				entry.Place = inc.VenueName
				if entry.Place == "" {
					entry.Place = inc.City
				}
			}
			critical = append(critical, entry)
		}
	}
	summary.AverageScore = float64(sum) / float64(len(scores))

	sort.Slice(critical, func(i, j int) bool {
		if critical[i].Score != critical[j].Score {
			return critical[i].Score > critical[j].Score
		}
		return critical[i].ID < critical[j].ID
	})
	if len(critical) > topN {
		critical = critical[:topN]
	}
	summary.TopHighRisk = critical

	return summary
}

// String renders the summary on one line for logs
func (b *BackfillSummary) String() string {
	return fmt.Sprintf("total=%d processed=%d persisted=%d avg=%.1f range=%d-%d critical=%d high=%d medium=%d low=%d",
		b.Total, b.Processed, b.Persisted, b.AverageScore, b.MinScore, b.MaxScore,
		b.Levels.Critical, b.Levels.High, b.Levels.Medium, b.Levels.Low)
}
