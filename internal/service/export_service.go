package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
	"github.com/noah-isme/schooldb-api/pkg/export"
)

// ExportFormat selects the file type of a download.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type tableRenderer interface {
	ContentType() string
	Extension() string
	Render(table export.Table) ([]byte, error)
}

type rankingSource interface {
	Overall(ctx context.Context) ([]models.RankedStudent, error)
	Stream(ctx context.Context, stream string) ([]models.RankedStudent, error)
}

type feeRegisterSource interface {
	ListAll(ctx context.Context, filter models.FeeFilter) ([]models.FeeRecordDetail, error)
}

type exportRecorder interface {
	RecordExport(report, format string, rows int)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders rankings and the fee register as files.
type ExportService struct {
	rankings  rankingSource
	fees      feeRegisterSource
	renderers map[ExportFormat]tableRenderer
	metrics   exportRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(rankings rankingSource, fees feeRegisterSource, metrics exportRecorder, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		rankings: rankings,
		fees:     fees,
		renderers: map[ExportFormat]tableRenderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Ranking exports the overall ranking, or one stream's ranking when stream is set.
func (s *ExportService) Ranking(ctx context.Context, format ExportFormat, stream string) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}

	var (
		ranked []models.RankedStudent
		title  = "Overall Ranking"
		name   = "ranking"
	)
	if stream != "" {
		ranked, err = s.rankings.Stream(ctx, stream)
		title = fmt.Sprintf("Stream Ranking - %s", stream)
		name = "ranking-" + slug(stream)
	} else {
		ranked, err = s.rankings.Overall(ctx)
	}
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   title,
		Headers: []string{"Rank", "Admission Number", "Name", "Stream", "Average Marks", "Records"},
		Rows:    make([][]string, 0, len(ranked)),
	}
	for _, r := range ranked {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(r.Rank),
			r.AdmissionNumber,
			r.Name,
			r.Stream,
			strconv.FormatFloat(r.Average, 'f', 2, 64),
			strconv.Itoa(r.Records),
		})
	}
	return s.render(renderer, "rankings", name, table)
}

// FeeRegister exports fee records matching the filter.
func (s *ExportService) FeeRegister(ctx context.Context, format ExportFormat, filter models.FeeFilter) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.FieldError("status", "status is not a valid choice")
	}
	fees, err := s.fees.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee register")
	}

	table := export.Table{
		Title:   "Fee Register",
		Headers: []string{"Admission Number", "Student", "Term", "Amount Due", "Amount Paid", "Balance", "Status"},
		Rows:    make([][]string, 0, len(fees)),
	}
	if filter.Term != "" {
		table.Title = "Fee Register - " + filter.Term
	}
	for _, fee := range fees {
		table.Rows = append(table.Rows, []string{
			fee.AdmissionNumber,
			fee.StudentName,
			fee.Term,
			money(fee.AmountDue),
			money(fee.AmountPaid),
			money(fee.Balance),
			string(fee.PaymentStatus),
		})
	}
	return s.render(renderer, "fee_register", "fee-register", table)
}

func (s *ExportService) renderer(format ExportFormat) (tableRenderer, error) {
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.FieldError("format", "format must be csv or pdf")
	}
	return renderer, nil
}

func (s *ExportService) render(renderer tableRenderer, report, name string, table export.Table) (*ExportFile, error) {
	data, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	filename := fmt.Sprintf("%s-%s.%s", name, s.now().UTC().Format("20060102"), renderer.Extension())
	if s.metrics != nil {
		s.metrics.RecordExport(report, renderer.Extension(), len(table.Rows))
	}
	s.logger.Info("export rendered", zap.String("file", filename), zap.Int("rows", len(table.Rows)), zap.Int("bytes", len(data)))
	return &ExportFile{Filename: filename, ContentType: renderer.ContentType(), Data: data}, nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func slug(v string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(v) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
