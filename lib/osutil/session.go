package osutil

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context cancelled by SIGINT or SIGTERM, the
// shutdown path for the extraction CLIs. Cancellation fires once; a
// second signal falls through to the default handler and kills the
// process.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-interrupts
		signal.Stop(interrupts)
		cancel()
	}()

	return ctx
}
