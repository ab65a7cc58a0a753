package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/largest/internal/config"
	"github.com/idelchi/largest/internal/logging"
	"github.com/idelchi/largest/internal/scan"
)

// logic runs the scan for cfg and writes the report to the console and, if
// requested, the save file.
func (c CLI) logic(cfg config.Config, invoked string) error {
	log := logging.New(c.stderr, cfg.Debug)

	if err := scan.CheckRoot(cfg.Root); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stderr, isFile := c.stderr.(*os.File)
	enableProgress := cfg.Format != config.FormatJSON &&
		!cfg.Quiet &&
		!cfg.Debug &&
		isFile && isatty.IsTerminal(stderr.Fd())

	opts := []scan.Option{scan.WithLogger(log)}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		opts = append(opts, scan.WithProgress(func(p scan.Progress) {
			msg := fmt.Sprintf("Searching… %d files, %d matched, %s",
				p.Visited, p.Matched, humanize.IBytes(p.Bytes))
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}, scan.DefaultProgressInterval))
	}

	result, err := scan.New(cfg, opts...).Run(ctx)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if !cfg.Quiet {
		if err := Render(c.stdout, cfg.Format, result, true); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	// The save file is only touched once the scan succeeded, so a failed or
	// interrupted run leaves an earlier report in place.
	if cfg.SaveOutput != "" {
		save, err := os.Create(cfg.SaveOutput)
		if err != nil {
			return withCode(FileOpenFailure, fmt.Errorf("opening output file: %w", err))
		}
		defer save.Close()

		if err := writeSaved(save, cfg.Format, result, invoked, c.version); err != nil {
			return fmt.Errorf("writing %q: %w", cfg.SaveOutput, err)
		}

		log.Debug().Str("path", cfg.SaveOutput).Msg("report saved")
	}

	return nil
}

// writeSaved writes the run header followed by the report. JSON reports carry
// their timestamps already and get no header.
func writeSaved(w io.WriteCloser, format config.Format, result *scan.Result, invoked, version string) error {
	if format != config.FormatJSON {
		if err := PrintHeader(w, result, invoked, version); err != nil {
			return err
		}
	}

	if err := Render(w, format, result, false); err != nil {
		return err
	}

	return w.Close()
}
