package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/bootstrap"
	"github.com/kbukum/seqkit/internal/catalogue"
)

func newRunCmd(g *globalOptions) *cobra.Command {
	var (
		dataDir string
		list    bool
	)
	cmd := &cobra.Command{
		Use:   "run [SAMPLE...]",
		Short: "Run catalogue samples (all when none are named)",
		Example: `  seqdemo run
  seqdemo run streams-8 people-7 --parallel --workers 4
  seqdemo run --data ./testdata`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, s := range catalogue.All() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-11s %s\n", s.ID, s.Title)
				}
				return nil
			}

			samples, err := selectSamples(args)
			if err != nil {
				return err
			}
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			var data fs.FS
			if dataDir != "" {
				data = os.DirFS(dataDir)
			}
			env := catalogue.NewEnv(cmd.OutOrStdout(), data, cfg.Engine)
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return catalogue.Run(ctx, env, samples, app.Summary.Track)
			})
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", "", "directory holding bands.txt and data.txt (default: embedded)")
	cmd.Flags().BoolVar(&list, "list", false, "list sample ids and exit")
	return cmd
}

func selectSamples(ids []string) ([]catalogue.Sample, error) {
	if len(ids) == 0 {
		return catalogue.All(), nil
	}
	samples := make([]catalogue.Sample, 0, len(ids))
	for _, id := range ids {
		s, ok := catalogue.Find(id)
		if !ok {
			return nil, fmt.Errorf("unknown sample %q (see run --list)", id)
		}
		samples = append(samples, s)
	}
	return samples, nil
}
