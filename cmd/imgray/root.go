package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/imgray"
	"github.com/gogpu/imgray/internal/interrupt"
)

// newRootCmd builds the imgray command. The interrupt source masks the
// worker pool construction of host runs.
func newRootCmd(src *interrupt.Source) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgray SRC DST",
		Short: "Convert an image to grayscale",
		Long: `imgray converts SRC to grayscale and writes DST.

Each pixel becomes floor(0.2126 R + 0.7152 G + 0.0722 B). The host path
splits the image into tiles converted by a worker pool; --gpu runs a single
compute kernel instead. Both produce identical files.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd.Flags())
		if err != nil {
			return err
		}
		cfg, err := loadConfig(v, args)
		if err != nil {
			return err
		}
		return run(cmd, cfg, src)
	}
	return cmd
}

// timings holds the wall-clock cost of each phase.
type timings struct {
	load, convert, save, total time.Duration
}

func run(cmd *cobra.Command, cfg Config, src *interrupt.Source) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose).With("run_id", uuid.NewString())
	imgray.SetLogger(logger)
	defer imgray.SetLogger(nil)

	mode := imgray.ModeHost
	if cfg.GPU {
		mode = imgray.ModeDevice
	}
	logger.Debug("imgray: starting", "src", cfg.Src, "dst", cfg.Dst,
		"mode", mode, "workers", cfg.Workers, "device", cfg.Device)

	var t timings
	start := time.Now()

	img, err := imgray.Load(cfg.Src)
	if err != nil {
		return err
	}
	t.load = time.Since(start)
	if err := interrupted(ctx, "load"); err != nil {
		return err
	}

	conv := imgray.New(
		imgray.WithWorkers(cfg.Workers),
		imgray.WithMasker(src),
		imgray.WithDevice(deviceOpener(cfg.Device)),
	)
	defer conv.Close()

	phase := time.Now()
	gray, err := conv.Convert(ctx, img, mode)
	if err != nil {
		return err
	}
	t.convert = time.Since(phase)
	if err := interrupted(ctx, "convert"); err != nil {
		return err
	}

	phase = time.Now()
	if err := imgray.Save(gray, cfg.Dst); err != nil {
		return err
	}
	t.save = time.Since(phase)
	t.total = time.Since(start)

	printReport(cmd.OutOrStdout(), img, mode, t)
	return nil
}

// interrupted reports a cancellation observed after phase as ErrCancelled.
// Device runs and file I/O do not watch ctx themselves.
func interrupted(ctx context.Context, phase string) error {
	if ctx.Err() == nil {
		return nil
	}
	return fmt.Errorf("%w: after %s: %w", imgray.ErrCancelled, phase, context.Cause(ctx))
}

// deviceOpener maps a --device value to its opener.
func deviceOpener(name string) func() (imgray.Device, error) {
	if name == "cpu" {
		return imgray.OpenCPU
	}
	return imgray.OpenHAL
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printReport writes the pixel count and phase timings.
func printReport(w io.Writer, img *imgray.Image, mode imgray.Mode, t timings) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "converted %d pixels (%dx%d) on %s\n", img.Width*img.Height, img.Width, img.Height, mode)
	for _, row := range []struct {
		name string
		d    time.Duration
	}{
		{"load", t.load},
		{"convert", t.convert},
		{"save", t.save},
		{"total", t.total},
	} {
		p.Fprintf(w, "%-8s %10.3f ms\n", row.name, float64(row.d.Microseconds())/1000)
	}
}
