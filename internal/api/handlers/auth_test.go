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
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) GetLibrary(ctx context.Context, id string) (*domain.Library, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Library), args.Error(1)
}

func TestAuthHandler_Validate_Success(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	mockSvc.On("GetLibrary", mock.Anything, "lib-456").Return(&domain.Library{
		ID:        "lib-456",
		Name:      "default",
		CreatedAt: time.Now().UTC(),
	}, nil)

	req := requestWithLibraryID(http.MethodGet, "/auth/validate", nil)
	w := httptest.NewRecorder()

	handler.Validate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "lib-456", data["library_id"])
	assert.Equal(t, "default", data["library_name"])
	assert.Equal(t, "test-key", data["key_name"])
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Validate_Unauthorized(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/auth/validate", nil)
	w := httptest.NewRecorder()

	handler.Validate(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "GetLibrary")
}

func TestAuthHandler_Validate_LibraryGone(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	mockSvc.On("GetLibrary", mock.Anything, "lib-456").Return(nil, domain.ErrLibraryNotFound)

	req := requestWithLibraryID(http.MethodGet, "/auth/validate", nil)
	w := httptest.NewRecorder()

	handler.Validate(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}
