// Package signal turns the first interrupt of a run into a cancellation.
//
// The handler is one-shot: after the first SIGINT or SIGTERM it cancels its
// context, closes the Interrupted channel and stops intercepting signals, so a
// second Ctrl+C falls through to the default behavior and terminates the
// process immediately.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Handler owns the cancellation token for one run.
type Handler struct {
	ctx         context.Context //nolint:containedctx // the handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{}
	sigChan     chan os.Signal
	fired       atomic.Bool
	once        sync.Once
	stopOnce    sync.Once
	received    atomic.Value
}

// NewHandler creates a handler listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	err := session.Run(h.Context())
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		sigChan:     make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context cancelled by the first signal.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel closed when the first signal arrives.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Fired reports whether a signal has been received.
func (h *Handler) Fired() bool {
	return h.fired.Load()
}

// Signal returns the signal that fired the handler, or nil.
func (h *Handler) Signal() os.Signal {
	if sig, ok := h.received.Load().(os.Signal); ok {
		return sig
	}
	return nil
}

// Stop unregisters the handler and cancels its context. Safe to call twice.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

// trigger fires the token once. Later calls are ignored.
func (h *Handler) trigger(sig os.Signal) {
	h.once.Do(func() {
		if sig != nil {
			h.received.Store(sig)
		}
		h.fired.Store(true)
		// Hand the next signal back to the runtime's default action.
		signal.Stop(h.sigChan)
		h.cancel()
		close(h.interrupted)
	})
}

func (h *Handler) listen() {
	select {
	case <-h.ctx.Done():
	case <-h.done:
	case sig := <-h.sigChan:
		h.trigger(sig)
	}
}
