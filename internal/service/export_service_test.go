package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/unitrack-api/internal/models"
	"github.com/noah-isme/unitrack-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T, store *memoryStore) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(NewUniversityService(store, nil, nil, nil), files, signer, cfg, zap.NewNop(), nil, nil)
	return svc, files
}

func seedRecords(t *testing.T, store *memoryStore, userID string, names ...string) {
	t.Helper()
	svc := NewUniversityService(store, nil, nil, nil)
	for _, name := range names {
		_, err := svc.Create(context.Background(), userID, sampleChanges(name, models.StatusApplying))
		require.NoError(t, err)
	}
}

func readExport(t *testing.T, files *storage.LocalStorage, relPath string) []byte {
	t.Helper()
	f, err := files.Open(relPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	return body
}

func TestExportServiceGenerateCSV(t *testing.T) {
	store := newMemoryStore()
	seedRecords(t, store, "u1", "Heidelberg", "Bonn")
	seedRecords(t, store, "u2", "Foreign")
	svc, files := newExportServiceForTest(t, store)

	result, err := svc.Generate(context.Background(), &models.ReportJob{ID: "job-1", UserID: "u1", Format: models.ReportFormatCSV})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.RelativePath, "u1/"))
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/export/"))
	assert.True(t, strings.HasSuffix(result.URL, result.Token))

	body := string(readExport(t, files, result.RelativePath))
	assert.Contains(t, body, "Name,Country,Deadline,Status")
	assert.Contains(t, body, "Heidelberg,Germany,2030-03-01,Applying,50.0,75.00")
	assert.Contains(t, body, "Total applications,2")
	assert.NotContains(t, body, "Foreign")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	store := newMemoryStore()
	seedRecords(t, store, "u1", "Leiden")
	svc, files := newExportServiceForTest(t, store)

	result, err := svc.Generate(context.Background(), &models.ReportJob{ID: "job-2", UserID: "u1", Format: models.ReportFormatPDF})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(readExport(t, files, result.RelativePath), []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t, newMemoryStore())
	_, err := svc.Generate(context.Background(), &models.ReportJob{ID: "job-3", UserID: "u1", Format: "xlsx"})
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "-etc-passwd", sanitizeFilename("../etc/passwd"))
	assert.Len(t, sanitizeFilename(strings.Repeat("a", 150)), 100)
}
