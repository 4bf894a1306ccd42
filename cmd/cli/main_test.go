package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"imputelab/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallRunEnv keeps the synthetic experiment to a handful of trials
func smallRunEnv(t *testing.T) {
	t.Helper()
	for key, value := range map[string]string{
		"LOG_LEVEL":           "ERROR",
		"DATASET_PATH":        "",
		"TARGET_COLUMN":       "",
		"SYNTHETIC_SEED":      "",
		"MISSING_PERCENTAGES": "10,20",
		"MCAR_STRATEGIES":     "mean",
		"MNAR_STRATEGIES":     "mean,constant",
		"TRIALS_PER_COLUMN":   "1",
		"CONSTANT_FILL":       "",
		"SEED":                "",
		"WORKERS":             "2",
		"OUTPUT_DIR":          t.TempDir(),
		"RENDER_CHARTS":       "",
	} {
		t.Setenv(key, value)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCommand_JSONReport(t *testing.T) {
	smallRunEnv(t)

	stdout, stderr, err := execute(t, "run", "--no-charts", "--json", "--seed", "11")
	require.NoError(t, err)

	var report struct {
		Seed       int64 `json:"seed"`
		TrialCount int   `json:"trial_count"`
		Dataset    struct {
			Rows int `json:"rows"`
			Cols int `json:"cols"`
		} `json:"dataset"`
		MCAR struct {
			Methods []struct {
				Method string `json:"method"`
			} `json:"methods"`
		} `json:"mcar"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	assert.Equal(t, int64(11), report.Seed)
	assert.Equal(t, 506, report.Dataset.Rows)
	assert.Equal(t, 13, report.Dataset.Cols)
	assert.Equal(t, 13, report.TrialCount)
	require.Len(t, report.MCAR.Methods, 1)
	assert.Equal(t, "mean", report.MCAR.Methods[0].Method)

	// MNAR diagnostics stay off stdout so the JSON is parseable
	assert.Contains(t, stderr, "na_percentages")
}

func TestMCARCommand(t *testing.T) {
	smallRunEnv(t)

	t.Run("valid percentage", func(t *testing.T) {
		stdout, _, err := execute(t, "mcar", "--percent", "20", "--strategy", "median", "--trials", "3", "--seed", "5")
		require.NoError(t, err)
		assert.Contains(t, stdout, "mcar median 20%")
		assert.Contains(t, stdout, "(n=3)")
	})

	t.Run("percentage out of range", func(t *testing.T) {
		_, _, err := execute(t, "mcar", "--percent", "150", "--seed", "5")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidParameter)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, _, err := execute(t, "mcar", "--strategy", "mode", "--trials", "1", "--seed", "5")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidStrategy)
	})
}

func TestProfileCommand(t *testing.T) {
	smallRunEnv(t)

	stdout, _, err := execute(t, "profile")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mnar blanked")
	assert.Contains(t, stdout, "CRIM")
}
