package sessionlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/tabletpath/internal/model"
)

func sampleEntry(id string) Entry {
	return Entry{
		Timestamp:    time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		JobID:        id,
		Shape:        model.ShapeCircle,
		Quantity:     30,
		HeadMode:     model.HeadDual,
		APITotalMg:   10,
		UnitWeightMg: 50,
	}
}

func TestAppend_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sessions.csv")
	require.NoError(t, Append(path, sampleEntry("a1")))
	require.NoError(t, Append(path, sampleEntry("b2")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,job_id,shape,quantity,head_mode,api_total_mg,unit_weight_mg", lines[0])
	assert.Equal(t, "2026-10-19T09:30:00Z,a1,circle,30,Dual Head,10,50", lines[1])
}

func TestAppend_DefaultsTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	e := sampleEntry("c3")
	e.Timestamp = time.Time{}
	before := time.Now().Add(-time.Second)
	require.NoError(t, Append(path, e))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Timestamp.After(before))
}

func TestRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	want := []Entry{sampleEntry("a1"), sampleEntry("b2")}
	want[1].HeadMode = model.HeadSingle
	want[1].Shape = model.ShapeCaplet
	for _, e := range want {
		require.NoError(t, Append(path, e))
	}

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range want {
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
		got[i].Timestamp = want[i].Timestamp
	}
	assert.Equal(t, want, got)
}

func TestRead_MissingFile(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadFrom_LegacyLog(t *testing.T) {
	legacy := "timestamp,shape,quantity,head_mode,api_total_mg,unit_weight_mg\n" +
		"2025-03-01T14:05:09,Cylinder,12,Single Head,5.5,27.5\n"
	entries, err := ReadFrom(strings.NewReader(legacy))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "", e.JobID)
	assert.Equal(t, model.ShapeKind("Cylinder"), e.Shape)
	assert.Equal(t, 12, e.Quantity)
	assert.Equal(t, model.HeadSingle, e.HeadMode)
	assert.Equal(t, 27.5, e.UnitWeightMg)
	assert.Equal(t, 14, e.Timestamp.Hour())
}

func TestReadFrom_Errors(t *testing.T) {
	_, err := ReadFrom(strings.NewReader("when,what\n1,2\n"))
	assert.ErrorContains(t, err, "timestamp")

	_, err = ReadFrom(strings.NewReader("timestamp,shape,quantity\nyesterday,circle,1\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadFrom(strings.NewReader("timestamp,shape,quantity\n2026-10-19T09:30:00Z,circle,many\n"))
	assert.ErrorContains(t, err, "quantity")
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.xlsx")
	require.NoError(t, ExportXLSX(path, []Entry{sampleEntry("a1"), sampleEntry("b2")}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"2026-10-19T09:30:00Z", "b2", "circle", "30", "Dual Head", "10", "50"}, rows[2])
}
