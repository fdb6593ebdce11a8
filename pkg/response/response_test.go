package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONMergesMeta(t *testing.T) {
	c, rec := newContext()

	JSON(c, http.StatusOK, []string{"S1"}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1},
		map[string]interface{}{"stream": "East"}, nil, map[string]interface{}{"count": 1})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body struct {
		Data []string               `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"S1"}, body.Data)
	assert.Equal(t, "East", body.Meta["stream"])
	assert.EqualValues(t, 1, body.Meta["count"])
}

func TestErrorHidesUntypedErrors(t *testing.T) {
	c, rec := newContext()

	Error(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Len(t, c.Errors, 1)
}

func TestErrorKeepsField(t *testing.T) {
	c, rec := newContext()

	Error(c, appErrors.FieldError("amount_paid", "Amount paid cannot be more than amount due."))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"amount_paid"`)
}

func TestAttachment(t *testing.T) {
	c, rec := newContext()

	Attachment(c, "fee-register-20240630.pdf", "application/pdf", []byte("%PDF-1.3"))

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="fee-register-20240630.pdf"`)
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}
