package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "espresso/internal/errors"
	"espresso/internal/pipeline"
	"espresso/internal/services"
	api "espresso/pkg/contracts/api/v1"
	"espresso/pkg/contracts/domain"
)

// MockExperimentService is a mock implementation of ExperimentServiceInterface
type MockExperimentService struct {
	mock.Mock
}

func (m *MockExperimentService) Load(ctx context.Context, folder string, durationSeconds float64) (*pipeline.LoadResponse, error) {
	args := m.Called(folder, durationSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.LoadResponse), args.Error(1)
}

func (m *MockExperimentService) Summary(ctx context.Context) (domain.ExperimentSummary, error) {
	args := m.Called()
	return args.Get(0).(domain.ExperimentSummary), args.Error(1)
}

func (m *MockExperimentService) Feeds(ctx context.Context) ([]domain.FeedEvent, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeedEvent), args.Error(1)
}

func (m *MockExperimentService) Flies(ctx context.Context) ([]domain.Fly, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fly), args.Error(1)
}

func (m *MockExperimentService) AttachLabel(ctx context.Context, name string, spec domain.LabelSpec) (domain.ExperimentSummary, error) {
	args := m.Called(name, spec)
	return args.Get(0).(domain.ExperimentSummary), args.Error(1)
}

func (m *MockExperimentService) RemoveLabels(ctx context.Context, names ...string) ([]string, error) {
	args := m.Called(names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockExperimentService) Combine(ctx context.Context, path string) (domain.ExperimentSummary, error) {
	args := m.Called(path)
	return args.Get(0).(domain.ExperimentSummary), args.Error(1)
}

func (m *MockExperimentService) Save(ctx context.Context, path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockExperimentService) Open(ctx context.Context, path string) (domain.ExperimentSummary, error) {
	args := m.Called(path)
	return args.Get(0).(domain.ExperimentSummary), args.Error(1)
}

// MockExportService is a mock implementation of ExportServiceInterface
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, req api.ExportRequest) (*services.ExportResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportResult), args.Error(1)
}

func newTestExperimentHandler(experiments *MockExperimentService, exports *MockExportService) *ExperimentHandler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return NewExperimentHandler(experiments, exports, logger, errorHandler)
}

func testSummary() domain.ExperimentSummary {
	return domain.ExperimentSummary{
		FeedlogCount:    1,
		FlyCount:        2,
		FeedRowCount:    6,
		Genotypes:       []string{"w1118"},
		Temperatures:    []string{"22"},
		Foodtypes:       []string{"5% sucrose"},
		DurationSeconds: 1800,
		Version:         "0.3.2",
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestExperimentHandlerSummary(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockExperimentService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "loaded experiment",
			setupMock: func(m *MockExperimentService) {
				m.On("Summary").Return(testSummary(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"genotypes":["w1118"]`,
		},
		{
			name: "no experiment loaded",
			setupMock: func(m *MockExperimentService) {
				m.On("Summary").Return(domain.ExperimentSummary{}, services.ErrNoExperiment)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"NO_EXPERIMENT"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExperimentService)
			tt.setupMock(mockService)
			handler := newTestExperimentHandler(mockService, new(MockExportService))

			req := httptest.NewRequest("GET", "/api/experiment", nil)
			rec := httptest.NewRecorder()

			handler.Summary(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExperimentHandlerFeeds(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockExperimentService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "returns feed table",
			setupMock: func(m *MockExperimentService) {
				feeds := []domain.FeedEvent{
					{FlyID: "0906-1420_CS_Fly1", ExperimentID: "0906-1420_CS", Valid: true},
					{FlyID: "0906-1420_CS_Fly2", ExperimentID: "0906-1420_CS", Valid: true},
				}
				m.On("Feeds").Return(feeds, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":2`,
		},
		{
			name: "no experiment loaded",
			setupMock: func(m *MockExperimentService) {
				m.On("Feeds").Return(nil, services.ErrNoExperiment)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"NO_EXPERIMENT"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExperimentService)
			tt.setupMock(mockService)
			handler := newTestExperimentHandler(mockService, new(MockExportService))

			req := httptest.NewRequest("GET", "/api/experiment/feeds", nil)
			rec := httptest.NewRecorder()

			handler.Feeds(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExperimentHandlerFeedsEncodesUnrecordedAsNull(t *testing.T) {
	mockService := new(MockExperimentService)
	event := domain.FeedEvent{
		FlyID:           "0906-1420_CS_Fly1",
		ExperimentID:    "0906-1420_CS",
		FeedSpeedNlPerS: math.NaN(),
	}
	mockService.On("Feeds").Return([]domain.FeedEvent{event}, nil)
	handler := newTestExperimentHandler(mockService, new(MockExportService))

	req := httptest.NewRequest("GET", "/api/experiment/feeds", nil)
	rec := httptest.NewRecorder()

	handler.Feeds(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"feed_speed_nl_s":null`)
}

func TestExperimentHandlerLoad(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockExperimentService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful load",
			body: `{"folder": "/data/session"}`,
			setupMock: func(m *MockExperimentService) {
				resp := &pipeline.LoadResponse{
					ID:     "op-1",
					Status: pipeline.OperationStatusCompleted,
					Steps:  map[string]*pipeline.StepState{},
				}
				m.On("Load", "/data/session", 0.0).Return(resp, nil)
				m.On("Summary").Return(testSummary(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"success"`,
		},
		{
			name:           "missing folder",
			body:           `{}`,
			setupMock:      func(m *MockExperimentService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_REQUEST"`,
		},
		{
			name: "load already running",
			body: `{"folder": "/data/session"}`,
			setupMock: func(m *MockExperimentService) {
				m.On("Load", "/data/session", 0.0).Return(nil, pipeline.ErrLoadInProgress)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"LOAD_RUNNING"`,
		},
		{
			name: "missing companion file",
			body: `{"folder": "/data/session"}`,
			setupMock: func(m *MockExperimentService) {
				m.On("Load", "/data/session", 0.0).
					Return(nil, apierrors.NewMissingFileError("FeedLog_0906-1420_CS.csv", "MetaData"))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `missing-file`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExperimentService)
			tt.setupMock(mockService)
			handler := newTestExperimentHandler(mockService, new(MockExportService))

			req := jsonRequest("POST", "/api/experiment/load", tt.body)
			rec := httptest.NewRecorder()

			handler.Load(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExperimentHandlerAttachLabel(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockExperimentService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "fixed label attached",
			body: `{"name": "Driver", "spec": {"kind": "fixed", "value": "Trh"}}`,
			setupMock: func(m *MockExperimentService) {
				summary := testSummary()
				summary.AddedLabels = []string{"Driver"}
				m.On("AttachLabel", "Driver", domain.FixedLabel("Trh")).Return(summary, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"label":"Driver"`,
		},
		{
			name:           "missing name",
			body:           `{"spec": {"kind": "fixed", "value": "Trh"}}`,
			setupMock:      func(m *MockExperimentService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_REQUEST"`,
		},
		{
			name: "unknown derive column",
			body: `{"name": "Condition", "spec": {"kind": "derived", "columns": ["NoSuch"], "separator": "_"}}`,
			setupMock: func(m *MockExperimentService) {
				m.On("AttachLabel", "Condition", mock.Anything).
					Return(domain.ExperimentSummary{}, apierrors.NewUserInputError("column NoSuch not found in the fly table"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `user-input`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExperimentService)
			tt.setupMock(mockService)
			handler := newTestExperimentHandler(mockService, new(MockExportService))

			req := jsonRequest("POST", "/api/experiment/labels", tt.body)
			rec := httptest.NewRecorder()

			handler.AttachLabel(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExperimentHandlerRemoveLabels(t *testing.T) {
	t.Run("named labels", func(t *testing.T) {
		mockService := new(MockExperimentService)
		mockService.On("RemoveLabels", []string{"Driver"}).Return([]string{"Driver"}, nil)
		handler := newTestExperimentHandler(mockService, new(MockExportService))

		req := jsonRequest("DELETE", "/api/experiment/labels", `{"names": ["Driver"]}`)
		rec := httptest.NewRecorder()

		handler.RemoveLabels(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"removed":["Driver"]`)
		mockService.AssertExpectations(t)
	})

	t.Run("empty body removes all", func(t *testing.T) {
		mockService := new(MockExperimentService)
		mockService.On("RemoveLabels", []string(nil)).Return([]string{"Driver", "Condition"}, nil)
		handler := newTestExperimentHandler(mockService, new(MockExportService))

		req := httptest.NewRequest("DELETE", "/api/experiment/labels", nil)
		rec := httptest.NewRecorder()

		handler.RemoveLabels(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":2`)
		mockService.AssertExpectations(t)
	})

	t.Run("unknown label", func(t *testing.T) {
		mockService := new(MockExperimentService)
		mockService.On("RemoveLabels", []string{"NoSuch"}).
			Return(nil, apierrors.NewUserInputError("label NoSuch was never attached"))
		handler := newTestExperimentHandler(mockService, new(MockExportService))

		req := jsonRequest("DELETE", "/api/experiment/labels", `{"names": ["NoSuch"]}`)
		rec := httptest.NewRecorder()

		handler.RemoveLabels(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestExperimentHandlerCombine(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockExperimentService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful combine",
			body: `{"bundle_path": "/data/other.espresso"}`,
			setupMock: func(m *MockExperimentService) {
				summary := testSummary()
				summary.FlyCount = 5
				summary.FeedlogCount = 2
				m.On("Combine", "/data/other.espresso").Return(summary, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"fly_count":5`,
		},
		{
			name: "no experiment loaded",
			body: `{"bundle_path": "/data/other.espresso"}`,
			setupMock: func(m *MockExperimentService) {
				m.On("Combine", "/data/other.espresso").
					Return(domain.ExperimentSummary{}, services.ErrNoExperiment)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"NO_EXPERIMENT"`,
		},
		{
			name: "incompatible schemas",
			body: `{"bundle_path": "/data/other.espresso"}`,
			setupMock: func(m *MockExperimentService) {
				m.On("Combine", "/data/other.espresso").
					Return(domain.ExperimentSummary{}, apierrors.NewDataIntegrityError("experiments disagree on label columns", nil))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `data-integrity`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExperimentService)
			tt.setupMock(mockService)
			handler := newTestExperimentHandler(mockService, new(MockExportService))

			req := jsonRequest("POST", "/api/experiment/combine", tt.body)
			rec := httptest.NewRecorder()

			handler.Combine(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExperimentHandlerSaveAndOpen(t *testing.T) {
	t.Run("save", func(t *testing.T) {
		mockService := new(MockExperimentService)
		mockService.On("Save", "/data/session.espresso").Return(nil)
		handler := newTestExperimentHandler(mockService, new(MockExportService))

		req := jsonRequest("POST", "/api/experiment/save", `{"path": "/data/session.espresso"}`)
		rec := httptest.NewRecorder()

		handler.Save(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"path":"/data/session.espresso"`)
		mockService.AssertExpectations(t)
	})

	t.Run("open", func(t *testing.T) {
		mockService := new(MockExperimentService)
		mockService.On("Open", "/data/session.espresso").Return(testSummary(), nil)
		handler := newTestExperimentHandler(mockService, new(MockExportService))

		req := jsonRequest("POST", "/api/experiment/open", `{"path": "/data/session.espresso"}`)
		rec := httptest.NewRecorder()

		handler.Open(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"fly_count":2`)
		mockService.AssertExpectations(t)
	})

	t.Run("open storage failure", func(t *testing.T) {
		mockService := new(MockExperimentService)
		mockService.On("Open", "/data/missing.espresso").
			Return(domain.ExperimentSummary{}, apierrors.NewStorageError("opening bundle", os.ErrNotExist))
		handler := newTestExperimentHandler(mockService, new(MockExportService))

		req := jsonRequest("POST", "/api/experiment/open", `{"path": "/data/missing.espresso"}`)
		rec := httptest.NewRecorder()

		handler.Open(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `storage`)
		mockService.AssertExpectations(t)
	})
}

func TestExperimentHandlerExport(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockExportService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "csv export",
			body: `{"format": "csv", "path": "/data/out", "views": ["feed-totals"]}`,
			setupMock: func(m *MockExportService) {
				result := &services.ExportResult{
					Format: services.FormatCSV,
					Files:  []string{"/data/out/feeds.csv", "/data/out/flies.csv", "/data/out/feed_totals.csv"},
				}
				m.On("Export", mock.Anything).Return(result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"format":"csv"`,
		},
		{
			name:           "unknown format rejected by contract",
			body:           `{"format": "parquet", "path": "/data/out"}`,
			setupMock:      func(m *MockExportService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_REQUEST"`,
		},
		{
			name: "unknown view from service",
			body: `{"format": "csv", "path": "/data/out"}`,
			setupMock: func(m *MockExportService) {
				m.On("Export", mock.Anything).Return(nil, services.ErrUnknownView)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"VALIDATION_FAILED"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockExports := new(MockExportService)
			tt.setupMock(mockExports)
			handler := newTestExperimentHandler(new(MockExperimentService), mockExports)

			req := jsonRequest("POST", "/api/experiment/export", tt.body)
			rec := httptest.NewRecorder()

			handler.Export(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockExports.AssertExpectations(t)
		})
	}
}

// TestExperimentHandlerRoutes drives requests through the mounted router to
// verify method and path wiring.
func TestExperimentHandlerRoutes(t *testing.T) {
	mockService := new(MockExperimentService)
	mockService.On("Summary").Return(testSummary(), nil)
	mockService.On("Flies").Return([]domain.Fly{}, nil)
	handler := newTestExperimentHandler(mockService, new(MockExportService))

	router := handler.Routes()

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/flies", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)

	// No PUT routes exist.
	req = jsonRequest("PUT", "/labels", `{}`)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
