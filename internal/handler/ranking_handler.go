package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/pkg/response"
)

type rankingService interface {
	Overview(ctx context.Context, stream string) (*dto.RankingOverview, error)
	Stream(ctx context.Context, stream string) ([]models.RankedStudent, error)
}

// RankingHandler exposes class rankings.
type RankingHandler struct {
	rankings rankingService
}

// NewRankingHandler constructs RankingHandler.
func NewRankingHandler(rankings rankingService) *RankingHandler {
	return &RankingHandler{rankings: rankings}
}

// Overview godoc
// @Summary Overall ranking and stream averages
// @Tags Rankings
// @Produce json
// @Param stream query string false "Also rank this stream"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rankings [get]
func (h *RankingHandler) Overview(c *gin.Context) {
	overview, err := h.rankings.Overview(c.Request.Context(), trimmedQuery(c, "stream"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Stream godoc
// @Summary Ranking within one stream
// @Tags Rankings
// @Produce json
// @Param stream path string true "Stream"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rankings/streams/{stream} [get]
func (h *RankingHandler) Stream(c *gin.Context) {
	ranked, err := h.rankings.Stream(c.Request.Context(), c.Param("stream"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranked, nil, map[string]interface{}{"stream": c.Param("stream"), "count": len(ranked)})
}
