// Package report renders the exports of a finished check: the clean list, the DNC list with
// the reason each number was flagged, and a plain-text summary.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/domain/errors"
)

// Export file names
const (
	CleanFileName   = "clean-numbers.txt"
	DNCFileName     = "dnc-numbers.txt"
	SummaryFileName = "summary.txt"
	ArchiveFileName = "phone-results.zip"
)

// DateLayout is the timestamp format of the summary header
const DateLayout = "1/2/2006, 3:04:05 PM"

// CleanNumbers lists every clean number, one per line
func CleanNumbers(records []*dnc.PhoneRecord) string {
	var lines []string
	for _, record := range records {
		if record != nil && record.Status == dnc.StatusClean {
			lines = append(lines, record.Cleaned)
		}
	}
	return strings.Join(lines, "\n")
}

// DNCNumbers lists every flagged number as number|details
func DNCNumbers(records []*dnc.PhoneRecord) string {
	var lines []string
	for _, record := range records {
		if record != nil && record.Status == dnc.StatusDNC {
			lines = append(lines, record.Cleaned+"|"+record.Details)
		}
	}
	return strings.Join(lines, "\n")
}

// Summary renders the processing report
func Summary(records []*dnc.PhoneRecord, at time.Time) string {
	var total, valid, listed, clean int
	for _, record := range records {
		if record == nil {
			continue
		}
		total++
		if record.IsValid {
			valid++
		}
		switch record.Status {
		case dnc.StatusDNC:
			listed++
		case dnc.StatusClean:
			clean++
		}
	}

	var b strings.Builder
	b.WriteString("PHONE NUMBER PROCESSING REPORT\n")
	b.WriteString("===============================\n")
	fmt.Fprintf(&b, "Date: %s\n\n", at.Format(DateLayout))
	fmt.Fprintf(&b, "Total Numbers: %d\n", total)
	fmt.Fprintf(&b, "Valid Numbers: %d\n", valid)
	fmt.Fprintf(&b, "DNC Numbers: %d\n", listed)
	fmt.Fprintf(&b, "Clean Numbers: %d\n\n", clean)
	return b.String()
}

type file struct {
	name    string
	content string
}

func files(records []*dnc.PhoneRecord, at time.Time) []file {
	return []file{
		{CleanFileName, CleanNumbers(records)},
		{DNCFileName, DNCNumbers(records)},
		{SummaryFileName, Summary(records, at)},
	}
}

// WriteArchive writes the three exports into a single zip archive
func WriteArchive(w io.Writer, records []*dnc.PhoneRecord, at time.Time) error {
	zw := zip.NewWriter(w)

	for _, f := range files(records, at) {
		header := &zip.FileHeader{
			Name:     f.name,
			Method:   zip.Deflate,
			Modified: at,
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return errors.Wrap(err, "failed to create archive entry "+f.name)
		}
		if _, err := io.WriteString(entry, f.content); err != nil {
			return errors.Wrap(err, "failed to write archive entry "+f.name)
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize archive")
	}
	return nil
}

// WriteFiles writes the three exports into dir, creating it when missing.
// It returns the paths written.
func WriteFiles(fs afero.Fs, dir string, records []*dnc.PhoneRecord, at time.Time) ([]string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	var paths []string
	for _, f := range files(records, at) {
		path := filepath.Join(dir, f.name)
		if err := afero.WriteFile(fs, path, []byte(f.content), 0o644); err != nil {
			return paths, errors.Wrap(err, "failed to write "+f.name)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteArchiveFile writes the zip archive to path
func WriteArchiveFile(fs afero.Fs, path string, records []*dnc.PhoneRecord, at time.Time) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create archive directory")
		}
	}

	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create archive")
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "failed to close archive")
		}
	}()

	return WriteArchive(f, records, at)
}
