package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/service"
)

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, libraryID, actor string) (*service.ExportResult, error) {
	args := m.Called(ctx, libraryID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func TestExportHandler_Export_Success(t *testing.T) {
	mockSvc := new(MockExportService)
	handler := NewExportHandler(mockSvc)

	mockSvc.On("Export", mock.Anything, "lib-456", "test-key").Return(&service.ExportResult{
		Key:         "exports/lib-456/20260831-120000.json",
		DownloadURL: "https://storage.example.com/exports/lib-456/20260831-120000.json?sig=abc",
		PromptCount: 42,
		ExportedAt:  time.Now().UTC(),
	}, nil)

	req := requestWithLibraryID(http.MethodPost, "/export", nil)
	w := httptest.NewRecorder()

	handler.Export(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "exports/lib-456/20260831-120000.json", data["key"])
	assert.Equal(t, float64(42), data["prompt_count"])
	assert.NotEmpty(t, data["download_url"])
	mockSvc.AssertExpectations(t)
}

func TestExportHandler_Export_NotConfigured(t *testing.T) {
	mockSvc := new(MockExportService)
	handler := NewExportHandler(mockSvc)

	mockSvc.On("Export", mock.Anything, "lib-456", "test-key").Return(nil, domain.ErrExportNotConfigured)

	req := requestWithLibraryID(http.MethodPost, "/export", nil)
	w := httptest.NewRecorder()

	handler.Export(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestExportHandler_Export_Unauthorized(t *testing.T) {
	mockSvc := new(MockExportService)
	handler := NewExportHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/export", nil)
	w := httptest.NewRecorder()

	handler.Export(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "Export")
}
