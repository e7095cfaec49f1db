package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/unitrack-api/internal/models"
	"github.com/noah-isme/unitrack-api/pkg/export"
	"github.com/noah-isme/unitrack-api/pkg/storage"
)

var reportHeaders = []string{"Name", "Country", "Deadline", "Status", "Scholarship (%)", "Application Fee", "Notes"}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders a user's records and analytics into a stored file.
type ExportService struct {
	universities universityLister
	storage      fileStorage
	csv          csvRenderer
	pdf          pdfRenderer
	signer       *storage.SignedURLSigner
	logger       *zap.Logger
	cfg          ExportConfig
	now          func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(universities universityLister, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		universities: universities,
		storage:      storage,
		csv:          csv,
		pdf:          pdf,
		signer:       signer,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Generate renders the job owner's report and returns a signed download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	records, err := s.universities.List(ctx, job.UserID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	dataset := BuildReportDataset(records, ComputeAnalytics(records, now))

	var payload []byte
	switch job.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("University Applications - %s", now.UTC().Format("2 Jan 2006")))
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job, now), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob, now time.Time) string {
	return fmt.Sprintf("%s/universities_%s_%s.%s",
		sanitizeFilename(job.UserID), now.UTC().Format("20060102_150405"), sanitizeFilename(job.ID), job.Format)
}

// BuildReportDataset lays out records as table rows and the analytics as summary lines.
func BuildReportDataset(records []models.University, summary models.AnalyticsSummary) export.Dataset {
	rows := lo.Map(records, func(u models.University, _ int) map[string]string {
		return map[string]string{
			"Name":            u.Name,
			"Country":         u.Country,
			"Deadline":        u.Deadline.String(),
			"Status":          string(u.Status),
			"Scholarship (%)": fmt.Sprintf("%.1f", u.ScholarshipPercentage),
			"Application Fee": u.ApplicationFees.StringFixed(2),
			"Notes":           u.Notes,
		}
	})

	lines := []export.SummaryLine{
		{Label: "Total applications", Value: fmt.Sprintf("%d", summary.Total)},
	}
	for _, bucket := range summary.ByStatus {
		lines = append(lines, export.SummaryLine{
			Label: string(bucket.Status),
			Value: fmt.Sprintf("%d (%.1f%%)", bucket.Count, bucket.Percentage),
		})
	}
	lines = append(lines,
		export.SummaryLine{Label: "Total application fees", Value: summary.TotalFees.StringFixed(2)},
		export.SummaryLine{Label: "Average scholarship", Value: fmt.Sprintf("%.1f%%", summary.AverageScholarship)},
		export.SummaryLine{Label: "Highest scholarship", Value: fmt.Sprintf("%.1f%%", summary.MaxScholarship)},
		export.SummaryLine{Label: "Countries", Value: fmt.Sprintf("%d", summary.CountryCount)},
	)
	for _, deadline := range summary.UpcomingDeadlines {
		lines = append(lines, export.SummaryLine{
			Label: "Upcoming: " + deadline.Name,
			Value: fmt.Sprintf("%s (%d days)", deadline.Deadline.String(), deadline.DaysUntil),
		})
	}

	return export.Dataset{Headers: reportHeaders, Rows: rows, Summary: lines}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", "-")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
