package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecast/crimecast/internal/queue"
	"github.com/crimecast/crimecast/internal/services"
)

const testCSV = `STATE/UT,Purpose,Year,Total No. of cases reported
Delhi,Theft,2010,100
Delhi,Theft,2011,110
Delhi,Theft,2012,105
Delhi,Theft,2013,120
Delhi,Theft,2014,130
Delhi,Theft,2015,125
Delhi,Theft,2016,140
Delhi,Theft,2017,150
Goa,Arson,2010,3
Goa,Arson,2011,4
Goa,Arson,2012,2
`

// trendingCSV appends thirty years of a linear trend plus AR(1) noise for
// Punjab / Robbery.
func trendingCSV() string {
	var b strings.Builder
	b.WriteString(testCSV)
	rng := rand.New(rand.NewSource(5))
	noise := 0.0
	for i := 0; i < 30; i++ {
		noise = 0.6*noise + 10*rng.NormFloat64()
		fmt.Fprintf(&b, "Punjab,Robbery,%d,%.0f\n", 1990+i, 400+4*float64(i)+noise)
	}
	return b.String()
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crimes.csv")
	require.NoError(t, os.WriteFile(path, []byte(trendingCSV()), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"run", "list", "watch"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	run, _, _ := cmd.Find([]string{"run"})
	for _, flag := range []string{"jurisdiction", "category", "horizon", "json", "sequential"} {
		assert.NotNil(t, run.Flags().Lookup(flag), "flag %s", flag)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("data"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRun_PrintsBothFamilies(t *testing.T) {
	data := writeDataset(t)

	out, err := execute(t, "run", "--data", data, "-j", "Delhi", "-k", "Theft", "--horizon", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "Delhi / Theft: 8 observations, horizon 3")
	assert.Contains(t, out, "2017  150")
	assert.Contains(t, out, "ARIMA(5,1,0)")
	assert.Contains(t, out, "2020")
	assert.Contains(t, out, "SARIMA(1,1,1)x(1,1,1,12)")
	assert.Contains(t, out, "forecast unavailable: InsufficientData during estimator")
}

func TestRun_TrendingSeries(t *testing.T) {
	data := writeDataset(t)

	out, err := execute(t, "run", "--data", data, "-j", "Punjab", "-k", "Robbery", "--json")
	require.NoError(t, err)

	var resp services.ForecastResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Observed, 30)
	require.Len(t, resp.Families, 2)
	assert.Nil(t, resp.Families[0].Error)
	require.Len(t, resp.Families[0].Predictions, 5)
	assert.Equal(t, 2020, resp.Families[0].Predictions[0].Period)
	assert.True(t, resp.Families[1].Failed())
}

func TestRun_JSON(t *testing.T) {
	data := writeDataset(t)

	out, err := execute(t, "run", "--data", data, "-j", "Delhi", "-k", "Theft", "--json", "--sequential")
	require.NoError(t, err)

	var resp services.ForecastResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 5, resp.Horizon)
	require.Len(t, resp.Families, 2)
	assert.Len(t, resp.Families[0].Predictions, 5)
	assert.True(t, resp.Families[1].Failed())
}

func TestRun_AllFailed(t *testing.T) {
	data := writeDataset(t)

	out, err := execute(t, "run", "--data", data, "-j", "Goa", "-k", "Arson")
	assert.ErrorIs(t, err, errAllFailed)
	assert.Contains(t, out, "Goa / Arson: 3 observations")
	assert.Contains(t, out, "ARIMA(5,1,0)\nforecast unavailable")
}

func TestRun_Errors(t *testing.T) {
	data := writeDataset(t)

	_, err := execute(t, "run", "--data", data, "-j", "Delhi", "-k", "Fraud")
	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, services.CodeSeriesNotFound, svcErr.Code)

	_, err = execute(t, "run", "--data", data, "-j", "Delhi", "-k", "Theft", "--horizon=-1")
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, services.CodeInvalidHorizon, svcErr.Code)

	_, err = execute(t, "run", "--data", filepath.Join(t.TempDir(), "missing.csv"), "-j", "Delhi", "-k", "Theft")
	assert.Error(t, err)

	_, err = execute(t, "run", "--data", data, "-j", "Delhi")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	data := writeDataset(t)

	out, err := execute(t, "list", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Delhi (1)\n")
	assert.Contains(t, out, "Goa (1)\n")
	assert.Contains(t, out, "Punjab (1)\n")
	assert.Contains(t, out, "41 records")

	out, err = execute(t, "list", "--data", data, "-j", "Goa")
	require.NoError(t, err)
	assert.Equal(t, "Arson\n", out)

	_, err = execute(t, "list", "--data", data, "-j", "Kerala")
	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, services.CodeNotFound, svcErr.Code)
}

func TestWatchEvents(t *testing.T) {
	q := queue.NewMemoryQueue()
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- watchEvents(ctx, q, "forecast.completed", 2, &out)
	}()

	completed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, j := range []string{"Delhi", "Goa"} {
		data, err := json.Marshal(services.ForecastEvent{
			Jurisdiction: j,
			Category:     "Theft",
			Horizon:      5,
			Families: []services.FamilyStatus{
				{Family: "arima", Status: services.StatusOK},
				{Family: "sarima", Status: services.StatusFailed, Code: "InsufficientData"},
			},
			LatencyMs:   12,
			CompletedAt: completed,
		})
		require.NoError(t, err)
		require.NoError(t, q.Publish(ctx, "forecast.completed", data))
	}

	require.NoError(t, <-done)
	assert.Equal(t,
		"2024-03-01T12:00:00Z Delhi/Theft h=5 arima=ok sarima=failed(InsufficientData) 12ms\n"+
			"2024-03-01T12:00:00Z Goa/Theft h=5 arima=ok sarima=failed(InsufficientData) 12ms\n",
		out.String())
}

func TestWatch_UnsupportedBroker(t *testing.T) {
	_, err := execute(t, "watch")
	assert.Error(t, err)
}
