package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Show prints recent measurements.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show measurements")
	}
	if closeStore != nil {
		defer closeStore()
	}

	measurements, err := store.ListRecentMeasurements(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(measurements) == 0 {
		fmt.Fprintln(os.Stdout, "no measurements found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Started (UTC)\tBPM\tMethod\tQuality\tPeaks\tSamples\tDropped")

	for _, m := range measurements {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%s\t%s\t%d\t%d\t%d\n",
			m.StartedAt.UTC().Format(time.RFC3339),
			m.BPM,
			m.Method,
			m.Quality,
			m.PeakCount,
			m.SampleCount,
			m.DroppedCount,
		)
	}

	writer.Flush()

	total, err := store.CountMeasurements(ctx)
	if err != nil {
		return err
	}
	if total > int64(len(measurements)) {
		fmt.Fprintf(os.Stdout, "showing %d of %d measurements\n", len(measurements), total)
	}
	return nil
}
