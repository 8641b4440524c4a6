package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	logger := slog.New(slog.NewJSONHandler(&discardWriter{}, nil))
	return NewErrorHandler(logger, false)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestErrorToProblemAppErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "missing file",
			err:        NewMissingFileError("FeedLog_0911-1403_SecondRun.csv", "MetaData"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeMissingFile,
		},
		{
			name:       "missing duration",
			err:        NewMissingDurationError("FeedLog_0911-1403_SecondRun.csv"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeMissingDuration,
		},
		{
			name:       "data integrity",
			err:        NewDataIntegrityError("2 fly IDs missing from metadata", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataIntegrity,
		},
		{
			name:       "user input",
			err:        NewUserInputError("label Batch was never added"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeUserInput,
		},
		{
			name:       "parsing",
			err:        NewParsingError("bad row", fmt.Errorf("line 3")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeParsing,
		},
		{
			name:       "storage",
			err:        NewStorageError("cannot write bundle", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeStorage,
		},
		{
			name:       "not found",
			err:        NewNotFoundError("experiment"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "wrapped app error",
			err:        fmt.Errorf("outer: %w", NewUserInputError("inner")),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeUserInput,
		},
		{
			name:       "plain error falls through to internal",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	h := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/experiment", nil)
			problem := h.ErrorToProblem(tt.err, r)

			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/experiment", problem.Instance)
		})
	}
}

func TestErrorToProblemContextCancelled(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/views/latency", nil)

	problem := h.ErrorToProblem(context.Canceled, r)
	assert.Equal(t, http.StatusGatewayTimeout, problem.Status)
	assert.Equal(t, TypeTimeout, problem.Type)
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodPost, "/api/experiment/load", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, NewMissingDurationError("FeedLog_0911-1403_SecondRun.csv"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeMissingDuration, body["type"])
	assert.Equal(t, "Experiment Duration Unknown", body["title"])
	assert.Contains(t, body, "trace_id")
}

func TestAPIErrorToProblem(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/experiment/feeds", nil)

	problem := h.ErrorToProblem(ErrNoExperiment, r)
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, TypeNoExperiment, problem.Type)
	assert.Equal(t, "NO_EXPERIMENT", problem.Extensions["error_code"])
}

func TestHandlePanic(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/experiment", nil)
	w := httptest.NewRecorder()

	h.HandlePanic(w, r, "unexpected state")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeInternal, body["type"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/version", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestJSONHelper(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/experiment", nil)
	w := httptest.NewRecorder()

	h.JSON(w, r, http.StatusAccepted, map[string]string{"status": "loading"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "loading", body["status"])
}

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeUserInput, "Invalid Input", "bad label", "/api/experiment/labels").
		WithExtension("error_type", "USER_INPUT")

	raw, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "USER_INPUT", body["error_type"])
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
}
