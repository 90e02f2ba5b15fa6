package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/dnc-scrubber/internal/service/report"
	"github.com/davidleathers/dnc-scrubber/internal/testutil"
)

func writeConfig(t *testing.T, dir, tcpa, person, premium string) string {
	t.Helper()
	content := fmt.Sprintf(`environment: test
log_level: error
lookup:
  timeout: 5s
  query_param: x
  tcpa_url: %s
  person_url: %s
  premium_url: %s
check:
  skip_delay: 0s
  check_delay: 0s
telemetry:
  enabled: false
`, tcpa, person, premium)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheckCommand(t *testing.T) {
	tcpa := testutil.NewLookupServer(t, "x", func(number string) any {
		return map[string]any{"is_dnc": number == "3125550142"}
	})
	person := testutil.NewLookupServer(t, "x", func(number string) any {
		if number == "4165550100" {
			return map[string]any{"national_dnc": true, "litigator": true}
		}
		return map[string]any{}
	})
	premium := testutil.NewLookupServer(t, "x", func(string) any {
		return map[string]any{"dnc_status": "clean"}
	})

	dir := t.TempDir()
	configPath := writeConfig(t, dir, tcpa.URL, person.URL, premium.URL)
	input := filepath.Join(dir, "numbers.txt")
	require.NoError(t, os.WriteFile(input, []byte(testutil.MixedList), 0o600))

	outDir := filepath.Join(dir, "out")
	zipPath := filepath.Join(dir, "archive", report.ArchiveFileName)

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"check", input, "--config", configPath, "--out", outDir, "--zip", zipPath})
	require.NoError(t, cmd.Execute())

	clean, err := os.ReadFile(filepath.Join(outDir, report.CleanFileName))
	require.NoError(t, err)
	assert.Equal(t, "2175550199", string(clean))

	listed, err := os.ReadFile(filepath.Join(outDir, report.DNCFileName))
	require.NoError(t, err)
	assert.Equal(t, "4165550100|National DNC, Litigator\n3125550142|TCPA DNC List", string(listed))

	summary, err := os.ReadFile(filepath.Join(outDir, report.SummaryFileName))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Total Numbers: 5\n")
	assert.Contains(t, string(summary), "Valid Numbers: 3\n")
	assert.Contains(t, string(summary), "DNC Numbers: 2\n")
	assert.Contains(t, string(summary), "Clean Numbers: 1\n")

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 3)

	assert.Contains(t, stdout.String(), "Check completed: 5/5 processed")
	assert.Contains(t, stdout.String(), "Clean: 1  DNC: 2  Invalid: 2")

	// invalid numbers never reach a lookup service
	assert.ElementsMatch(t, []string{"2175550199", "4165550100", "3125550142"}, tcpa.Queries())
	assert.ElementsMatch(t, tcpa.Queries(), premium.Queries())
}

func TestCheckCommand_Rejections(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "http://127.0.0.1:1", "http://127.0.0.1:1", "http://127.0.0.1:1")

	csv := filepath.Join(dir, "numbers.csv")
	require.NoError(t, os.WriteFile(csv, []byte("2175550199\n"), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{name: "non txt input", args: []string{"check", csv, "--config", configPath}},
		{name: "missing input", args: []string{"check", filepath.Join(dir, "missing.txt"), "--config", configPath}},
		{name: "empty input", args: []string{"check", writeEmpty(t, dir), "--config", configPath}},
		{name: "no argument", args: []string{"check", "--config", configPath}},
		{name: "missing config", args: []string{"check", csv, "--config", filepath.Join(dir, "nope.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			assert.Error(t, cmd.Execute())
		})
	}
}

func writeEmpty(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o600))
	return path
}
