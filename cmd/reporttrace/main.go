// Command reporttrace renders a checklist record onto the recording
// surface and prints the resulting draw trace. It is the headless
// harness for inspecting pagination decisions without a PDF backend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nexstacksg/property-stewards-app-sub001/checklist"
	"github.com/nexstacksg/property-stewards-app-sub001/config"
	"github.com/nexstacksg/property-stewards-app-sub001/layout"
	"github.com/nexstacksg/property-stewards-app-sub001/media"
	"github.com/nexstacksg/property-stewards-app-sub001/observability"
	"github.com/nexstacksg/property-stewards-app-sub001/surface"
)

var flags struct {
	profile    string
	heading    string
	scope      string
	conditions []string
	entryOnly  bool
	noMedia    bool
	meta       bool
	fullTrace  bool
	pageWidth  float64
	pageHeight float64
	verbose    bool
	timeout    time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "reporttrace <record.json>",
	Short: "Render an inspection record and print the layout trace",
	Long: `Reporttrace loads a checklist record from JSON, lays it out onto a
headless recording surface and prints either a per-page summary or the
full ordered draw trace. Remote photos are fetched and decoded exactly
as a real render would, so the trace reflects true tile placement.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&flags.profile, "profile", "", "YAML layout profile overriding the defaults")
	rootCmd.Flags().StringVar(&flags.heading, "heading", "", "Section heading drawn above the table")
	rootCmd.Flags().StringVar(&flags.scope, "scope", "", "Render only the item with this ID")
	rootCmd.Flags().StringSliceVar(&flags.conditions, "conditions", nil, "Only show tasks with these condition codes")
	rootCmd.Flags().BoolVar(&flags.entryOnly, "entry-only", false, "Suppress inline task media; media appears in dated rows only")
	rootCmd.Flags().BoolVar(&flags.noMedia, "no-media", false, "Skip all media rendering")
	rootCmd.Flags().BoolVar(&flags.meta, "meta", false, "Include the property/contract/inspector lines")
	rootCmd.Flags().BoolVar(&flags.fullTrace, "trace", false, "Print every draw op instead of the per-page summary")
	rootCmd.Flags().Float64Var(&flags.pageWidth, "page-width", 595, "Page width in points")
	rootCmd.Flags().Float64Var(&flags.pageHeight, "page-height", 842, "Page height in points")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging")
	rootCmd.Flags().DurationVar(&flags.timeout, "timeout", 2*time.Minute, "Overall render deadline")
}

func run(cmd *cobra.Command, args []string) error {
	zl, err := buildLogger()
	if err != nil {
		return err
	}
	defer zl.Sync() //nolint:errcheck
	log := observability.Zap(zl)

	prof := config.Default()
	if flags.profile != "" {
		prof, err = config.Load(flags.profile)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}

	record, err := loadRecord(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
	defer cancel()

	resolver := media.NewResolver(media.WithLogger(log))
	eng := layout.New(
		layout.WithProfile(prof),
		layout.WithLogger(log),
		layout.WithResolver(resolver),
	)

	rec := surface.NewRecorder(flags.pageWidth, flags.pageHeight)
	res, err := eng.Render(ctx, rec, record, layout.Options{
		Heading:           flags.heading,
		IncludeMeta:       flags.meta,
		FilterByScopeID:   flags.scope,
		AllowedConditions: flags.conditions,
		EntryOnly:         flags.entryOnly,
		IncludeMedia:      !flags.noMedia,
	})
	if err != nil {
		return err
	}

	if flags.fullTrace {
		printTrace(rec)
	} else {
		printSummary(rec)
	}
	fmt.Printf("render %s: %d pages, %d rows\n", res.RenderID, res.Pages, res.Rows)
	return nil
}

func buildLogger() (*zap.Logger, error) {
	if flags.verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func loadRecord(path string) (*checklist.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record checklist.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("record %s: %w", path, err)
	}
	return &record, nil
}

func printSummary(rec *surface.Recorder) {
	for page := 0; page < rec.PageCount(); page++ {
		counts := map[surface.OpKind]int{}
		for _, op := range rec.OpsOnPage(page) {
			counts[op.Kind]++
		}
		parts := make([]string, 0, len(counts))
		for _, kind := range []surface.OpKind{surface.OpText, surface.OpRect, surface.OpImage, surface.OpCircle, surface.OpLine} {
			if counts[kind] > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
			}
		}
		fmt.Printf("page %d: %s\n", page+1, strings.Join(parts, ", "))
	}
}

func printTrace(rec *surface.Recorder) {
	for _, op := range rec.Ops {
		switch op.Kind {
		case surface.OpAddPage:
			fmt.Printf("--- page %d ---\n", op.Page+1)
		case surface.OpText:
			fmt.Printf("p%d text  (%.1f,%.1f) w=%.1f %q\n", op.Page+1, op.X, op.Y, op.W, op.Text)
		case surface.OpImage:
			fmt.Printf("p%d image (%.1f,%.1f) %gx%g\n", op.Page+1, op.X, op.Y, op.W, op.H)
		case surface.OpCircle:
			fmt.Printf("p%d circle (%.1f,%.1f) r=%.1f\n", op.Page+1, op.X, op.Y, op.W)
		default:
			fmt.Printf("p%d %-5s (%.1f,%.1f) %gx%g fill=%v\n", op.Page+1, op.Kind, op.X, op.Y, op.W, op.H, op.Fill)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
