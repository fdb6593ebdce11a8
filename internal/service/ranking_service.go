package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type rankingRepository interface {
	RankingRows(ctx context.Context) ([]models.PerformanceMark, error)
	RankingRowsForStream(ctx context.Context, stream string) ([]models.PerformanceMark, error)
}

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// RankingService computes rankings from the current performance records.
// Nothing is cached; every call reads the records afresh.
type RankingService struct {
	repo    rankingRepository
	metrics queryObserver
	logger  *zap.Logger
}

// NewRankingService constructs a RankingService.
func NewRankingService(repo rankingRepository, metrics queryObserver, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{repo: repo, metrics: metrics, logger: logger}
}

// Overview returns the overall ranking and stream averages, plus the ranking
// of one stream when stream is not empty.
func (s *RankingService) Overview(ctx context.Context, stream string) (*dto.RankingOverview, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	averages := AverageByStudent(rows)
	overview := &dto.RankingOverview{
		Overall:        RankStudents(averages),
		StreamAverages: StreamAverages(averages),
	}
	if stream != "" {
		overview.Stream = stream
		overview.StreamRanking = RankStream(averages, stream)
	}
	return overview, nil
}

// Overall ranks every student with at least one performance record.
func (s *RankingService) Overall(ctx context.Context) ([]models.RankedStudent, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	return RankStudents(AverageByStudent(rows)), nil
}

// Stream ranks the students of one stream.
func (s *RankingService) Stream(ctx context.Context, stream string) ([]models.RankedStudent, error) {
	if stream == "" {
		return nil, appErrors.FieldError("stream", "stream is required")
	}
	started := time.Now()
	rows, err := s.repo.RankingRowsForStream(ctx, stream)
	s.observe("ranking_rows_stream", started)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stream performance")
	}
	return RankStudents(AverageByStudent(rows)), nil
}

func (s *RankingService) rows(ctx context.Context) ([]models.PerformanceMark, error) {
	started := time.Now()
	rows, err := s.repo.RankingRows(ctx)
	s.observe("ranking_rows", started)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performance")
	}
	return rows, nil
}

func (s *RankingService) observe(label string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(started))
	}
}
