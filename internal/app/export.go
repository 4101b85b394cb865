package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"pulse-rate-monitor/internal/storage"
)

// Export renders measurement history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-30 * 24 * time.Hour)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	measurements, err := store.ListMeasurementsBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(measurements) == 0 {
		a.Logger.Info().Msg("no measurements found for export window")
		return nil
	}

	downsampled := downsampleMeasurements(measurements, opts.MaxPoints)
	a.Logger.Info().Int("total", len(measurements)).Int("exported", len(downsampled)).Msg("exporting measurements")

	if opts.CSVPath != "" {
		if err := writeMeasurementsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeMeasurementsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleMeasurements(measurements []storage.Measurement, max int) []storage.Measurement {
	if max <= 0 || len(measurements) <= max {
		return measurements
	}

	result := make([]storage.Measurement, 0, max)
	step := float64(len(measurements)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(measurements) {
			idx = len(measurements) - 1
		}
		result = append(result, measurements[idx])
	}
	return result
}

func writeMeasurementsCSV(path string, measurements []storage.Measurement) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"started_at", "finished_at", "bpm", "method", "quality", "peak_count", "sample_count", "dropped_count"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, m := range measurements {
		record := []string{
			m.StartedAt.Format(time.RFC3339),
			m.FinishedAt.Format(time.RFC3339),
			strconv.Itoa(m.BPM),
			m.Method,
			m.Quality,
			strconv.Itoa(m.PeakCount),
			strconv.Itoa(m.SampleCount),
			strconv.Itoa(m.DroppedCount),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeMeasurementsPNG(path string, measurements []storage.Measurement) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(measurements))
	bpm := make([]float64, len(measurements))
	peaks := make([]float64, len(measurements))

	for i, m := range measurements {
		x[i] = m.StartedAt
		bpm[i] = float64(m.BPM)
		peaks[i] = float64(m.PeakCount)
	}

	intFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Heart rate (BPM)",
			ValueFormatter: intFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Peaks",
			ValueFormatter: intFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "BPM",
				XValues: x,
				YValues: bpm,
			},
			chart.TimeSeries{
				Name:    "Peaks",
				XValues: x,
				YValues: peaks,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
