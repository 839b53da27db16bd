package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fundscope/internal/domain"
	"fundscope/internal/handler"
	"fundscope/internal/service"
	"fundscope/mocks"
)

func newAnalysisHandler() (*handler.AnalysisHandler, *mocks.MockAnalysisService) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, nil)
	return h, mockSvc
}

// --- StartRun ---

func TestAnalysisHandler_StartRun_Success(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	expected := &service.RunResult{
		Run: domain.AnalysisRun{
			ID:        uuid.New(),
			RootPath:  "Acme Fund",
			Status:    domain.RunStatusCompleted,
			FundCount: 2,
		},
		Funds: []domain.Fund{
			{"Fund Manager": "Acme Capital"},
			{"Fund Manager": "Basecamp Ventures"},
		},
	}
	mockSvc.On("Run", mock.Anything, "Acme Fund").Return(expected, nil)

	body, _ := json.Marshal(map[string]string{"root_path": "Acme Fund"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.StartRun(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestAnalysisHandler_StartRun_MissingRootPath(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.StartRun(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestAnalysisHandler_StartRun_InvalidRootPath(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	mockSvc.On("Run", mock.Anything, "nope").Return(nil, domain.ErrInvalidRootPath)

	body, _ := json.Marshal(map[string]string{"root_path": "nope"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.StartRun(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_ROOT_PATH", resp.Error.Code)
}

func TestAnalysisHandler_StartRun_EmptyTree(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	mockSvc.On("Run", mock.Anything, "Empty Folder").Return(nil, domain.ErrEmptyTree)

	body, _ := json.Marshal(map[string]string{"root_path": "Empty Folder"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.StartRun(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "EMPTY_TREE", resp.Error.Code)
}

// --- GetRun ---

func TestAnalysisHandler_GetRun_Success(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	runID := uuid.New()
	expected := &domain.AnalysisRun{
		ID:       runID,
		RootPath: "Acme Fund",
		Status:   domain.RunStatusCompleted,
	}
	mockSvc.On("GetRun", mock.Anything, runID).Return(expected, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/"+runID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: runID.String()}}

	h.GetRun(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAnalysisHandler_GetRun_InvalidID(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetRun(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "GetRun", mock.Anything, mock.Anything)
}

func TestAnalysisHandler_GetRun_NotFound(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	runID := uuid.New()
	mockSvc.On("GetRun", mock.Anything, runID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/"+runID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: runID.String()}}

	h.GetRun(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- ListRuns ---

func TestAnalysisHandler_ListRuns_DefaultPagination(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	runs := []domain.AnalysisRun{
		{ID: uuid.New(), RootPath: "Acme Fund", Status: domain.RunStatusCompleted},
	}
	mockSvc.On("ListRuns", mock.Anything, 0, 20).Return(runs, 1, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses", nil)

	h.ListRuns(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
	mockSvc.AssertExpectations(t)
}

func TestAnalysisHandler_ListRuns_ClampsLimit(t *testing.T) {
	h, mockSvc := newAnalysisHandler()

	// Out-of-range limit falls back to the default.
	mockSvc.On("ListRuns", mock.Anything, 5, 20).Return([]domain.AnalysisRun{}, 0, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses?offset=5&limit=500", nil)

	h.ListRuns(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}
