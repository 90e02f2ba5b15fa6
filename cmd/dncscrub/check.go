package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/domain/errors"
	dncservice "github.com/davidleathers/dnc-scrubber/internal/service/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/service/report"
)

type checkOptions struct {
	input   string
	outDir  string
	zipPath string
}

func newCheckCmd(configPath *string) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check <file.txt>",
		Short: "Check every number in a file and write the exports",
		Long: `Reads one phone number per line, checks each valid number in order and writes
clean-numbers.txt, dnc-numbers.txt and summary.txt to the output directory.
Interrupting the run stops after the number in flight; results so far are still written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			return runCheck(cmd.Context(), a, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "directory for the exported lists")
	cmd.Flags().StringVar(&opts.zipPath, "zip", "", "also write every export into this zip archive")
	return cmd
}

func runCheck(ctx context.Context, a *app, opts checkOptions, out io.Writer) error {
	if !dnc.IsTextFile(opts.input) {
		return errors.NewValidationError("INVALID_FILE_TYPE", "only .txt files are accepted").
			WithDetails(map[string]interface{}{"filename": filepath.Base(opts.input)})
	}

	data, err := afero.ReadFile(a.fs, opts.input)
	if err != nil {
		return errors.Wrap(err, "failed to read number list")
	}

	records := dnc.ParseRecords(string(data))
	summary := dnc.Summarize(records)
	a.logger.Info("Number list loaded",
		zap.String("file", opts.input),
		zap.Int("total", summary.Total),
		zap.Int("valid", summary.Valid),
	)

	driver, err := a.newDriver(dncservice.Publishers{a.metrics, progressLogger{logger: a.logger.Named("progress")}})
	if err != nil {
		return err
	}

	// cancelling ctx ends the loop at the next boundary
	session, err := driver.Start(ctx, records)
	if err != nil {
		return err
	}
	if err := driver.Wait(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	results := session.Records()
	at := time.Now()

	written, err := report.WriteFiles(a.fs, opts.outDir, results, at)
	if err != nil {
		return err
	}
	if opts.zipPath != "" {
		if err := report.WriteArchiveFile(a.fs, opts.zipPath, results, at); err != nil {
			return err
		}
		written = append(written, opts.zipPath)
	}

	snap := session.Snapshot()
	fmt.Fprintf(out, "Check %s: %d/%d processed\n", snap.State, snap.Counts.Processed(), snap.Total)
	fmt.Fprintf(out, "Clean: %d  DNC: %d  Invalid: %d\n", snap.Counts.Clean, snap.Counts.DNC, snap.Counts.Invalid)
	for _, path := range written {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

// progressLogger reports driver events through the logger
type progressLogger struct {
	logger *zap.Logger
}

func (p progressLogger) Publish(_ context.Context, event dnc.Event) {
	fields := []zap.Field{
		zap.String("session_id", event.SessionID.String()),
		zap.Float64("progress", event.Progress),
		zap.Int("cursor", event.Cursor),
		zap.Int("total", event.Total),
	}

	switch event.Type {
	case dnc.EventChecking:
		p.logger.Debug("Checking number", append(fields, zap.String("number", event.Number))...)
	case dnc.EventProgress:
		p.logger.Info("Number processed", append(fields,
			zap.String("number", event.Number),
			zap.String("status", string(event.Status)),
		)...)
	default:
		p.logger.Info(string(event.Type), append(fields,
			zap.Int("clean", event.Counts.Clean),
			zap.Int("dnc", event.Counts.DNC),
			zap.Int("invalid", event.Counts.Invalid),
		)...)
	}
}
