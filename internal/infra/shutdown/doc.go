// Package shutdown coordinates process termination for jmapctl.
//
//   - WithSignals: a context cancelled on SIGINT or SIGTERM
//   - Handler: cleanup hooks run once, in reverse order, under a timeout
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(closeStore)
//	<-ctx.Done()
//	err := h.Shutdown()
package shutdown
