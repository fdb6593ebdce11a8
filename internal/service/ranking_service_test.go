package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type stubRankingRepo struct {
	rows []models.PerformanceMark
	err  error
}

func (s stubRankingRepo) RankingRows(ctx context.Context) ([]models.PerformanceMark, error) {
	return s.rows, s.err
}

func (s stubRankingRepo) RankingRowsForStream(ctx context.Context, stream string) ([]models.PerformanceMark, error) {
	var out []models.PerformanceMark
	for _, r := range s.rows {
		if r.Stream == stream {
			out = append(out, r)
		}
	}
	return out, s.err
}

type queryLabels []string

func (q *queryLabels) ObserveDBQuery(label string, duration time.Duration) {
	*q = append(*q, label)
}

func rankingFixtureRows() []models.PerformanceMark {
	return []models.PerformanceMark{
		mark("S1", "East", "Term 1", 90),
		mark("S2", "West", "Term 1", 70),
		mark("S2", "West", "Term 2", 80),
		mark("S3", "East", "Term 1", 75),
		mark("S4", "West", "Term 2", 60),
	}
}

func TestRankingServiceOverview(t *testing.T) {
	labels := &queryLabels{}
	svc := NewRankingService(stubRankingRepo{rows: rankingFixtureRows()}, labels, nil)

	overview, err := svc.Overview(context.Background(), "West")
	require.NoError(t, err)

	require.Len(t, overview.Overall, 4)
	assert.Equal(t, "S1", overview.Overall[0].AdmissionNumber)
	assert.Equal(t, "S2", overview.Overall[1].AdmissionNumber)
	assert.Equal(t, "S3", overview.Overall[2].AdmissionNumber)
	assert.Equal(t, 3, overview.Overall[2].Rank)

	require.Len(t, overview.StreamAverages, 2)
	assert.Equal(t, "East", overview.StreamAverages[0].Stream)
	assert.InDelta(t, 82.5, overview.StreamAverages[0].Average, 1e-9)
	assert.InDelta(t, 67.5, overview.StreamAverages[1].Average, 1e-9)

	require.Len(t, overview.StreamRanking, 2)
	assert.Equal(t, "S2", overview.StreamRanking[0].AdmissionNumber)
	assert.Equal(t, 1, overview.StreamRanking[0].Rank)
	assert.Equal(t, []string{"ranking_rows"}, []string(*labels))
}

func TestRankingServiceStream(t *testing.T) {
	svc := NewRankingService(stubRankingRepo{rows: rankingFixtureRows()}, nil, nil)

	ranked, err := svc.Stream(context.Background(), "East")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "S1", ranked[0].AdmissionNumber)
	assert.Equal(t, "S3", ranked[1].AdmissionNumber)

	_, err = svc.Stream(context.Background(), "")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestRankingServiceEmptyAndFailure(t *testing.T) {
	svc := NewRankingService(stubRankingRepo{}, nil, nil)
	overview, err := svc.Overview(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, overview.Overall)
	assert.Nil(t, overview.StreamRanking)

	svc = NewRankingService(stubRankingRepo{err: errors.New("boom")}, nil, nil)
	_, err = svc.Overall(context.Background())
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
}
