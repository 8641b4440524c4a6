package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "espresso/internal/errors"
)

const validFeedLog = `FlyID,ChoiceIdx,RelativeTime_ms,FeedDuration_ms,FeedVol_µl,Valid
1,0,60000,2500,0.02,True
`

const validMetadata = `ID,Genotype,Temperature,Sex,FlyCountInChamber,Tube1
1,w1118,22,F,1,5% sucrose
`

const validFeedStats = `Minutes
120
`

func writeSessionFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func writeCompleteSession(t *testing.T, dir, token string) {
	t.Helper()
	writeSessionFile(t, dir, "FeedLog_"+token+".csv", validFeedLog)
	writeSessionFile(t, dir, "MetaData_"+token+".csv", validMetadata)
	writeSessionFile(t, dir, "FeedStats_"+token+".csv", validFeedStats)
}

func TestValidateSessionFolder(t *testing.T) {
	validator := NewFileValidator(slog.Default())

	t.Run("complete session passes", func(t *testing.T) {
		dir := t.TempDir()
		writeCompleteSession(t, dir, "2017-09-06_14-20-55_CS")

		assert.NoError(t, validator.ValidateSessionFolder(dir, true))
	})

	t.Run("missing folder is a user input error", func(t *testing.T) {
		err := validator.ValidateSessionFolder(filepath.Join(t.TempDir(), "nope"), true)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUserInput))
	})

	t.Run("folder without feed logs is a user input error", func(t *testing.T) {
		dir := t.TempDir()
		writeSessionFile(t, dir, "notes.txt", "nothing here")

		err := validator.ValidateSessionFolder(dir, true)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUserInput))
	})

	t.Run("missing metadata counterpart", func(t *testing.T) {
		dir := t.TempDir()
		token := "2017-09-06_14-20-55_CS"
		writeSessionFile(t, dir, "FeedLog_"+token+".csv", validFeedLog)
		writeSessionFile(t, dir, "FeedStats_"+token+".csv", validFeedStats)

		err := validator.ValidateSessionFolder(dir, true)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingFile))
	})

	t.Run("missing feedstats requires a duration override", func(t *testing.T) {
		dir := t.TempDir()
		token := "2017-09-06_14-20-55_CS"
		writeSessionFile(t, dir, "FeedLog_"+token+".csv", validFeedLog)
		writeSessionFile(t, dir, "MetaData_"+token+".csv", validMetadata)

		err := validator.ValidateSessionFolder(dir, true)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingDuration))

		// With an explicit duration the stats file is optional.
		assert.NoError(t, validator.ValidateSessionFolder(dir, false))
	})

	t.Run("all problems reported together", func(t *testing.T) {
		dir := t.TempDir()

		// Session A: metadata missing. Session B: empty feedstats and a
		// metadata sheet without tube columns.
		writeSessionFile(t, dir, "FeedLog_2017-09-05_10-00-00_A.csv", validFeedLog)
		writeSessionFile(t, dir, "FeedStats_2017-09-05_10-00-00_A.csv", validFeedStats)

		writeSessionFile(t, dir, "FeedLog_2017-09-06_14-20-55_B.csv", validFeedLog)
		writeSessionFile(t, dir, "MetaData_2017-09-06_14-20-55_B.csv",
			"ID,Genotype,Temperature,FlyCountInChamber\n1,w1118,22,1\n")
		writeSessionFile(t, dir, "FeedStats_2017-09-06_14-20-55_B.csv", "")

		err := validator.ValidateSessionFolder(dir, true)
		require.Error(t, err)

		var merr *multierror.Error
		require.ErrorAs(t, err, &merr)
		assert.GreaterOrEqual(t, merr.Len(), 3)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingFile))
	})

	t.Run("feedlog missing required columns", func(t *testing.T) {
		dir := t.TempDir()
		token := "2017-09-06_14-20-55_CS"
		writeSessionFile(t, dir, "FeedLog_"+token+".csv", "FlyID,ChoiceIdx\n1,0\n")
		writeSessionFile(t, dir, "MetaData_"+token+".csv", validMetadata)
		writeSessionFile(t, dir, "FeedStats_"+token+".csv", validFeedStats)

		err := validator.ValidateSessionFolder(dir, true)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestValidateFile(t *testing.T) {
	validator := NewFileValidator(nil)

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   bool
	}{
		{
			name: "existing readable file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))
				return path
			},
			wantErr: false,
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr: true,
		},
		{
			name: "directory instead of file",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: true,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "empty.csv")
				require.NoError(t, os.WriteFile(path, nil, 0644))
				return path
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateFile(tt.setupFunc(t))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCSVFile(t *testing.T) {
	validator := NewFileValidator(slog.Default())

	t.Run("csv extension required", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		err := validator.ValidateCSVFile(path)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("valid csv accepted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.csv")
		require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0644))

		assert.NoError(t, validator.ValidateCSVFile(path))
	})
}

func TestValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(slog.Default())

	dir := filepath.Join(t.TempDir(), "exports", "nested")
	require.NoError(t, validator.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCountFiles(t *testing.T) {
	validator := NewFileValidator(slog.Default())
	dir := t.TempDir()

	for _, name := range []string{"FeedLog_a.csv", "FeedLog_b.csv", "MetaData_a.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "FeedLog_dir.csv"), 0755))

	count, err := validator.CountFiles(dir, "FeedLog_*.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
