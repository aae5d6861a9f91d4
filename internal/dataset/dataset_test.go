package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecast/crimecast/internal/analytics"
)

const sampleCSV = `STATE/UT,Purpose,Year,Total No. of cases reported
Delhi,Theft,2012,150
Delhi,Theft,2010,120
Delhi,Theft,2011,135
Delhi,Robbery,2010,"1,200"
Assam,Theft,2010.0,40

Assam,Theft,2011, 42
`

func TestLoad(t *testing.T) {
	store, err := Load(strings.NewReader(sampleCSV), DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, 6, store.Len())
	assert.Equal(t, []string{"Assam", "Delhi"}, store.Jurisdictions())
	assert.Equal(t, []string{"Robbery", "Theft"}, store.Categories("Delhi"))
	assert.Nil(t, store.Categories("Goa"))
	assert.True(t, store.HasJurisdiction("Assam"))
	assert.False(t, store.HasJurisdiction("Goa"))
	assert.Len(t, store.Version(), 16)

	rows := store.Filter("Delhi", "Theft")
	assert.Equal(t, []analytics.Row{
		{Period: 2012, Value: 150},
		{Period: 2010, Value: 120},
		{Period: 2011, Value: 135},
	}, rows)

	assert.Equal(t, []analytics.Row{{Period: 2010, Value: 1200}}, store.Filter("Delhi", "Robbery"))
	assert.Equal(t, []analytics.Row{{Period: 2010, Value: 40}, {Period: 2011, Value: 42}}, store.Filter("Assam", "Theft"))
	assert.Empty(t, store.Filter("Goa", "Theft"))

	records := store.Records("Assam", "Theft")
	require.Len(t, records, 2)
	assert.Equal(t, Record{Jurisdiction: "Assam", Category: "Theft", Year: 2010, Count: 40}, records[0])
}

func TestLoad_VersionTracksContent(t *testing.T) {
	a, err := Load(strings.NewReader(sampleCSV), DefaultColumns())
	require.NoError(t, err)
	b, err := Load(strings.NewReader(sampleCSV), DefaultColumns())
	require.NoError(t, err)
	c, err := Load(strings.NewReader(strings.Replace(sampleCSV, "150", "151", 1)), DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), c.Version())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		column  string
		missing bool
	}{
		{
			name:    "missing column",
			input:   "STATE/UT,Year,Total No. of cases reported\nDelhi,2010,1\n",
			missing: true,
		},
		{
			name:   "fractional year",
			input:  "STATE/UT,Purpose,Year,Total No. of cases reported\nDelhi,Theft,2010,1\nDelhi,Theft,2011.5,2\n",
			line:   3,
			column: "Year",
		},
		{
			name:   "bad count",
			input:  "STATE/UT,Purpose,Year,Total No. of cases reported\nDelhi,Theft,2010,n/a\n",
			line:   2,
			column: "Total No. of cases reported",
		},
		{
			name:   "short row",
			input:  "STATE/UT,Purpose,Year,Total No. of cases reported\nDelhi,Theft\n",
			line:   2,
			column: "Year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), DefaultColumns())
			require.Error(t, err)

			if tt.missing {
				assert.True(t, errors.Is(err, ErrMissingColumn))
				return
			}

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.column, perr.Column)
		})
	}

	_, err := Load(strings.NewReader(""), DefaultColumns())
	assert.Error(t, err)
}

func TestLoad_NegativeCountsReachBuilder(t *testing.T) {
	input := "STATE/UT,Purpose,Year,Total No. of cases reported\nDelhi,Theft,2010,-5\n"
	store, err := Load(strings.NewReader(input), DefaultColumns())
	require.NoError(t, err)

	_, err = analytics.BuildSeries(store.Filter("Delhi", "Theft"))
	assert.True(t, errors.Is(err, analytics.ErrInvalidValue))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crimes.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	cols := Columns{Jurisdiction: "STATE/UT", Category: "Purpose", Period: "Year", Value: "Total No. of cases reported"}
	store, err := LoadFile(path, cols)
	require.NoError(t, err)
	assert.Equal(t, 6, store.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), cols)
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	records := []Record{
		{Jurisdiction: "Kerala", Category: "Theft", Year: 2001, Count: 3},
		{Jurisdiction: "Kerala", Category: "Arson", Year: 2001, Count: 1},
	}
	store := NewStore(records, "v1")
	records[0].Count = 99

	assert.Equal(t, "v1", store.Version())
	assert.Equal(t, []string{"Arson", "Theft"}, store.Categories("Kerala"))
	assert.Equal(t, []analytics.Row{{Period: 2001, Value: 3}}, store.Filter("Kerala", "Theft"))
}
