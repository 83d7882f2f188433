// Package bootstrap runs a finite seqkit task with a uniform lifecycle.
//
// NewApp applies configuration defaults, validates them and initializes the
// global logger. RunTask starts telemetry when enabled, runs the start hooks,
// executes the task under a context cancelled by SIGINT or SIGTERM and then
// shuts everything down within the graceful timeout.
//
//	app, err := bootstrap.NewApp(cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    n, err := stream.Count(ctx, s)
//	    ...
//	})
package bootstrap
