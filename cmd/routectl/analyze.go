package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"backend-velohub/internal/analyzer"
	"backend-velohub/internal/gpx"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var (
	easyColor   = color.New(color.FgGreen)
	mediumColor = color.New(color.FgYellow, color.Bold)
	hardColor   = color.New(color.FgRed, color.Bold)
)

type analyzeOptions struct {
	json       bool
	maxProfile int
}

func newAnalyzeCmd() *cobra.Command {
	o := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <file.gpx>",
		Short: "Print distance, climbing and difficulty for a GPX file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			doc, err := gpx.Parse(f)
			if err != nil {
				return err
			}
			metrics := analyzer.Analyze(doc.Points)
			metrics.ElevationProfile = analyzer.DownsampleProfile(metrics.ElevationProfile, o.maxProfile)

			if o.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(metrics)
			}
			return writeMetricsTable(cmd.OutOrStdout(), doc.Name, metrics)
		},
	}
	cmd.Flags().BoolVar(&o.json, "json", false, "print metrics as JSON")
	cmd.Flags().IntVar(&o.maxProfile, "max-profile", analyzer.DefaultProfileMax, "maximum elevation profile samples")
	return cmd
}

func writeMetricsTable(w io.Writer, name string, m analyzer.Metrics) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	if name == "" {
		name = "-"
	}
	rows := [][]string{
		{"Name", name},
		{"Distance (km)", fmtFloat(m.TotalDistanceKm, 2)},
		{"Elevation gain (m)", fmtFloat(m.TotalElevationGainM, 0)},
		{"Min elevation (m)", fmtOptional(m.MinElevationM)},
		{"Max elevation (m)", fmtOptional(m.MaxElevationM)},
		{"Start", fmt.Sprintf("%.5f, %.5f", m.StartPoint.Lat, m.StartPoint.Lon)},
		{"End", fmt.Sprintf("%.5f, %.5f", m.EndPoint.Lat, m.EndPoint.Lon)},
		{"Profile samples", strconv.Itoa(len(m.ElevationProfile))},
		{"Difficulty", difficultyLabel(m.Difficulty)},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func difficultyLabel(d analyzer.Difficulty) string {
	switch d {
	case analyzer.Hard:
		return hardColor.Sprint(string(d))
	case analyzer.Medium:
		return mediumColor.Sprint(string(d))
	default:
		return easyColor.Sprint(string(d))
	}
}

func fmtFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func fmtOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmtFloat(*v, 0)
}
