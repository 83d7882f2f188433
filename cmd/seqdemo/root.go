package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/version"
)

const appName = "seqdemo"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string
	parallel   bool
	unordered  bool
	workers    int
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Replay the seqkit usage catalogue",
		Long: `seqdemo runs the seqkit sequence engine over sample data.

Configuration is read from config.yml, then .env, then SEQKIT_ environment
variables. Engine flags override all of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "config file (default: search cmd/seqdemo, config/, cwd)")
	pf.StringVar(&opts.envFile, "env-file", "", ".env file to load")
	pf.StringVarP(&opts.logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	pf.BoolVarP(&opts.parallel, "parallel", "p", false, "evaluate terminals in parallel")
	pf.BoolVar(&opts.unordered, "unordered", false, "let parallel ForEach deliver in completion order")
	pf.IntVarP(&opts.workers, "workers", "w", 0, "parallel workers (default GOMAXPROCS)")

	root.AddCommand(newRunCmd(opts), newStatsCmd(opts), newVersionCmd())
	return root
}

// load reads the configuration and applies flag overrides.
func (o *globalOptions) load(cmd *cobra.Command) (*config.Config, error) {
	var loaderOpts []config.LoaderOption
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}
	cfg, err := config.Load(appName, loaderOpts...)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("parallel") {
		cfg.Engine.Parallel = o.parallel
	}
	if flags.Changed("unordered") {
		cfg.Engine.Unordered = o.unordered
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = o.workers
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if cfg.Base.Version == "" {
		cfg.Base.Version = version.Get().Short()
	}
	return cfg, nil
}
