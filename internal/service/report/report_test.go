package report

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

var reportTime = time.Date(2026, 10, 17, 14, 5, 9, 0, time.UTC)

func checkedRecords() []*dnc.PhoneRecord {
	records := dnc.ParseRecords("2175550199\n0175550199\n4165550100\n(312) 555-0142\n7735550100")
	records[0].Status, records[0].Details = dnc.StatusClean, dnc.CleanDetails
	records[1].Status = dnc.StatusInvalid
	records[2].Status, records[2].Details = dnc.StatusDNC, "National DNC, Litigator"
	records[3].Status, records[3].Details = dnc.StatusDNC, "TCPA DNC List"
	// records[4] was never reached
	return records
}

func TestCleanNumbers(t *testing.T) {
	assert.Equal(t, "2175550199", CleanNumbers(checkedRecords()))
	assert.Empty(t, CleanNumbers(nil))
}

func TestDNCNumbers(t *testing.T) {
	assert.Equal(t, "4165550100|National DNC, Litigator\n3125550142|TCPA DNC List", DNCNumbers(checkedRecords()))
	assert.Empty(t, DNCNumbers(dnc.ParseRecords("2175550199")))
}

func TestSummary(t *testing.T) {
	want := "PHONE NUMBER PROCESSING REPORT\n" +
		"===============================\n" +
		"Date: 10/17/2026, 2:05:09 PM\n\n" +
		"Total Numbers: 5\n" +
		"Valid Numbers: 4\n" +
		"DNC Numbers: 2\n" +
		"Clean Numbers: 1\n\n"
	assert.Equal(t, want, Summary(checkedRecords(), reportTime))
}

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(content)
	}
	return out
}

func TestWriteArchive(t *testing.T) {
	records := checkedRecords()
	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, records, reportTime))

	assert.Equal(t, map[string]string{
		CleanFileName:   CleanNumbers(records),
		DNCFileName:     DNCNumbers(records),
		SummaryFileName: Summary(records, reportTime),
	}, readArchive(t, buf.Bytes()))
}

func TestWriteFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	records := checkedRecords()

	paths, err := WriteFiles(fs, "out/results", records, reportTime)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"out/results/clean-numbers.txt",
		"out/results/dnc-numbers.txt",
		"out/results/summary.txt",
	}, paths)

	content, err := afero.ReadFile(fs, "out/results/dnc-numbers.txt")
	require.NoError(t, err)
	assert.Equal(t, DNCNumbers(records), string(content))
}

func TestWriteFiles_ReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := WriteFiles(fs, "out", checkedRecords(), reportTime)
	assert.Error(t, err)
}

func TestWriteArchiveFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	records := checkedRecords()

	require.NoError(t, WriteArchiveFile(fs, "exports/"+ArchiveFileName, records, reportTime))

	data, err := afero.ReadFile(fs, "exports/"+ArchiveFileName)
	require.NoError(t, err)
	files := readArchive(t, data)
	assert.Len(t, files, 3)
	assert.Equal(t, Summary(records, reportTime), files[SummaryFileName])
}
