package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewUserInputError("label Batch was never added"),
			want: "[USER_INPUT] label Batch was never added",
		},
		{
			name: "with cause",
			err:  NewParsingError("bad FeedLog row", fmt.Errorf("line 7: strconv")),
			want: "[PARSING] bad FeedLog row: line 7: strconv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := NewDataIntegrityError("join key mismatch", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeDataIntegrity, appErr.Type)
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{
			name:    "direct match",
			err:     NewMissingDurationError("FeedLog_0911-1403_SecondRun.csv"),
			errType: ErrTypeMissingDuration,
			want:    true,
		},
		{
			name:    "wrapped match",
			err:     fmt.Errorf("load failed: %w", NewMissingFileError("FeedLog_0911-1403_SecondRun.csv", "MetaData")),
			errType: ErrTypeMissingFile,
			want:    true,
		},
		{
			name:    "type mismatch",
			err:     NewUserInputError("bad label"),
			errType: ErrTypeDataIntegrity,
			want:    false,
		},
		{
			name:    "plain error",
			err:     fmt.Errorf("plain"),
			errType: ErrTypeUserInput,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}

func TestMissingFileErrorContext(t *testing.T) {
	err := NewMissingFileError("FeedLog_0911-1403_SecondRun.csv", "MetaData")

	assert.Equal(t, ErrTypeMissingFile, err.Type)
	assert.Equal(t, "FeedLog_0911-1403_SecondRun.csv", err.Context["feedlog"])
	assert.Equal(t, "MetaData", err.Context["missing_role"])
	assert.Contains(t, err.Error(), "MetaData file")
}

func TestWithContext(t *testing.T) {
	err := NewStorageError("cannot write bundle", nil).
		WithContext("path", "/tmp/expt.espresso")

	assert.Equal(t, "/tmp/expt.espresso", err.Context["path"])
}
