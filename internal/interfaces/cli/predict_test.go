package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coalition-intelligence/internal/application/forecast"
	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

func TestPredictCmd_FromHistoryJSON(t *testing.T) {
	dir, configPath := writeFixture(t)

	out, _, err := runCLI(t, NewRootCommand(), "--config", configPath, "predict", "--year", "2023", "-o", "json")
	require.NoError(t, err)

	var report forecast.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2023, report.Year)
	assert.Equal(t, "fixture", report.Profile)
	assert.Equal(t, SourceFile, report.Source)
	assert.Equal(t, forecast.SeatsFromHistory, report.SeatsSource)
	assert.Equal(t, "D", report.Largest)
	assert.Equal(t, 11, report.Evaluated)
	assert.Equal(t, 5, report.Feasible)
	assert.Len(t, report.Candidates, 5)
	assert.False(t, report.Topics)
	assert.NotEmpty(t, report.RunID)
	for i := 1; i < len(report.Candidates); i++ {
		assert.GreaterOrEqual(t, report.Candidates[i-1].FinalScore, report.Candidates[i].FinalScore)
	}

	metrics, err := os.ReadFile(filepath.Join(dir, "coalition.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "coalition_forecasts_total")
	assert.Contains(t, string(metrics), "coalition_forecast_candidates_feasible")
}

func TestPredictCmd_ExplicitSeatsTable(t *testing.T) {
	_, configPath := writeFixture(t)

	out, _, err := runCLI(t, NewRootCommand(), "--config", configPath,
		"predict", "--year", "2023", "--seats", "A=50,D=40")
	require.NoError(t, err)

	assert.Contains(t, out, "seats from input")
	assert.Contains(t, out, "COALITION")
	assert.Contains(t, out, "A + D")
	assert.Contains(t, out, "90")
}

func TestPredictCmd_SeatsFromStdin(t *testing.T) {
	_, configPath := writeFixture(t)

	root := NewRootCommand()
	root.SetIn(strings.NewReader("Partij,Zetels\nA,50\nD,40\n"))
	out, _, err := runCLI(t, root, "--config", configPath,
		"predict", "--year", "2023", "--seats-file", "-", "-o", "json")
	require.NoError(t, err)

	var report forecast.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, forecast.SeatsFromInput, report.SeatsSource)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, 90, report.Candidates[0].Seats)
}

func TestPredictCmd_Topics(t *testing.T) {
	_, configPath := writeFixture(t)

	out, _, err := runCLI(t, NewRootCommand(), "--config", configPath,
		"predict", "--year", "2023", "--topics", "-o", "json")
	require.NoError(t, err)

	var report forecast.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Topics)

	var ad *coalition.ScoredCoalition
	for i := range report.Candidates {
		if report.Candidates[i].Coalition.Equal(coalition.Coalition{"A", "D"}) {
			ad = &report.Candidates[i]
		}
	}
	require.NotNil(t, ad)
	assert.Equal(t, 1.0, ad.JSDPenalty)
}

func TestPredictCmd_CSV(t *testing.T) {
	_, configPath := writeFixture(t)

	out, _, err := runCLI(t, NewRootCommand(), "--config", configPath,
		"predict", "--year", "2023", "--top-k", "2", "-o", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RANK,COALITION,SEATS"))
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
}

func TestPredictCmd_Errors(t *testing.T) {
	_, configPath := writeFixture(t)

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"unknown year", []string{"--year", "1999"}, errors.CodeUnknownYear},
		{"invalid seats", []string{"--year", "2023", "--seats", "A=x"}, errors.CodeSeatsInvalid},
		{"unknown profile", []string{"--year", "2023", "--profile", "nope"}, errors.CodeProfileUnknown},
		{"missing seat file", []string{"--year", "2023", "--seats-file", "/nonexistent.csv"}, errors.CodeDatasetRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", configPath, "predict"}, tt.args...)
			_, _, err := runCLI(t, NewRootCommand(), args...)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestPredictCmd_FlagValidation(t *testing.T) {
	_, configPath := writeFixture(t)

	_, _, err := runCLI(t, NewRootCommand(), "--config", configPath, "predict")
	require.Error(t, err, "--year is required")
	assert.Equal(t, errors.ExitUsage, ExitStatus(err))

	_, _, err = runCLI(t, NewRootCommand(), "--config", configPath,
		"predict", "--year", "2023", "--seats", "A=1", "--seats-file", "x.csv")
	require.Error(t, err, "--seats and --seats-file are exclusive")
}

func TestFirstPositive(t *testing.T) {
	assert.Equal(t, 3, firstPositive(0, 3, 5))
	assert.Equal(t, 2, firstPositive(2, 3))
	assert.Equal(t, 0, firstPositive(0, -1))
}
