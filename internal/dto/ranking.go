package dto

import "github.com/noah-isme/schooldb-api/internal/models"

// RankingOverview bundles the overall ranking, stream averages and, when a
// stream was requested, that stream's own ranking.
type RankingOverview struct {
	Overall        []models.RankedStudent `json:"overall"`
	StreamAverages []models.StreamAverage `json:"stream_averages"`
	Stream         string                 `json:"stream,omitempty"`
	StreamRanking  []models.RankedStudent `json:"stream_ranking,omitempty"`
}
