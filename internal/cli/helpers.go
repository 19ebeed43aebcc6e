package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/aretw0/chatlist/internal/logging"
)

// SignalContext is cancelled by SIGINT, SIGTERM or Stop, and remembers the
// signal that ended it so serve and mcp can report why they stopped.
type SignalContext struct {
	context.Context
	cancel context.CancelFunc
	sig    atomic.Pointer[os.Signal]
}

// NewSignalContext starts listening for shutdown signals until the returned
// context is done.
func NewSignalContext(parent context.Context) *SignalContext {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	sc := watchSignals(parent, ch)
	context.AfterFunc(sc, func() { signal.Stop(ch) })
	return sc
}

// watchSignals cancels the returned context on the first signal read from ch.
func watchSignals(parent context.Context, ch <-chan os.Signal) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, cancel: cancel}
	go func() {
		select {
		case sig := <-ch:
			sc.sig.Store(&sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Stop cancels the context without a signal.
func (sc *SignalContext) Stop() {
	sc.cancel()
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	if sig := sc.sig.Load(); sig != nil {
		return *sig
	}
	return nil
}

// CreateLogger configures the application logger from a level name.
// Logs go to Stderr so they never mix with transition output on Stdout.
func CreateLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
