package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"example.com/healthdash/internal/archive"
	"example.com/healthdash/internal/dashboard"
	"example.com/healthdash/internal/domain"
	"example.com/healthdash/internal/logging"
)

type inspectOptions struct {
	rangeName string
	types     []string
	charted   bool
	format    string
	rows      int
	entryName string
}

func inspectCmd(verbose *bool) *cobra.Command {
	opts := inspectOptions{}

	c := &cobra.Command{
		Use:   "inspect <archive.zip>",
		Short: "Parse an export archive and print its record groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := domain.ParseTimeRange(opts.rangeName)
			if err != nil {
				return err
			}
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}

			logger := zap.NewNop()
			if *verbose {
				if logger, err = logging.New(logging.Config{Level: "debug", Development: true}); err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
			}

			service := dashboard.NewService(dashboard.Config{
				Archive:     archive.Config{EntryName: opts.entryName},
				RecordTypes: opts.recordTypes(),
			}, dashboard.WithLogger(logger))

			report, err := service.Process(cmd.Context(), data, dashboard.Request{Range: rng})
			if err != nil {
				return fmt.Errorf("%s: %w", domain.Category(err), err)
			}
			return writeReport(cmd.OutOrStdout(), format, newInspectView(report, opts.rows))
		},
	}

	c.Flags().StringVarP(&opts.rangeName, "range", "r", string(domain.RangeAll), "time range: all, 1y, 6m or 1m")
	c.Flags().StringSliceVarP(&opts.types, "types", "t", nil, "record types to keep (default: every type)")
	c.Flags().BoolVar(&opts.charted, "charted", false, "keep only blood pressure, heart rate and body mass")
	c.Flags().StringVarP(&opts.format, "format", "f", string(formatTable), "output format: table, json or yaml")
	c.Flags().IntVarP(&opts.rows, "rows", "n", 10, "most recent rows shown per group (0 for all)")
	c.Flags().StringVar(&opts.entryName, "entry", archive.DefaultEntryName, "export document name inside the archive")
	c.MarkFlagsMutuallyExclusive("types", "charted")
	return c
}

func (o inspectOptions) recordTypes() []string {
	if o.charted {
		return domain.DefaultTypes()
	}
	types := make([]string, 0, len(o.types))
	for _, t := range o.types {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return nil
	}
	return types
}
