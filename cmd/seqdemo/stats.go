package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/bootstrap"
	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/lines"
	"github.com/kbukum/seqkit/records"
	"github.com/kbukum/seqkit/stream"
)

// column selects the numeric value of one input line.
type column struct {
	field    int
	jsonPath string
	header   bool
	lenient  bool
}

func newStatsCmd(g *globalOptions) *cobra.Command {
	var col column
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Summary statistics of a numeric column (FILE - reads stdin)",
		Example: `  seqdemo stats data.txt --field 1 --lenient
  seqdemo stats events.jsonl.gz --path latency.ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(nil))
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				start := time.Now()
				stats, err := columnStats(ctx, args[0], col, cfg.Engine)
				app.Summary.Track("stats", time.Since(start), err)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stats.Humanize())
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.IntVarP(&col.field, "field", "f", 0, "zero-based CSV field index")
	f.StringVar(&col.jsonPath, "path", "", "JSON path of the value; input is JSON lines")
	f.BoolVar(&col.header, "header", false, "skip the first line")
	f.BoolVar(&col.lenient, "lenient", false, "skip blank lines and rows without the field")
	return cmd
}

// columnStats computes statistics of col over the lines of path.
func columnStats(ctx context.Context, path string, col column, engine config.EngineConfig) (stream.SummaryStatistics[float64], error) {
	return lines.With(ctx, path, func(ctx context.Context, s *stream.Stream[string]) (stream.SummaryStatistics[float64], error) {
		if col.header {
			s = stream.Skip(s, 1)
		}
		s = config.Apply(engine, s)
		return stream.Stats(ctx, col.values(s))
	}, lines.WithMaxLine(engine.MaxLineBytes()))
}

func (c column) values(s *stream.Stream[string]) *stream.Stream[float64] {
	if c.lenient {
		s = stream.Filter(s, func(l string) bool { return strings.TrimSpace(l) != "" })
	}
	if c.jsonPath != "" {
		return stream.Map(s, func(_ context.Context, l string) (float64, error) {
			return records.JSONFloat(l, c.jsonPath)
		})
	}
	rows := records.Rows(s)
	if c.lenient {
		rows = stream.Filter(rows, func(f []string) bool { return len(f) > c.field })
	}
	return stream.Map(rows, func(_ context.Context, f []string) (float64, error) {
		return records.Float(f, c.field)
	})
}
