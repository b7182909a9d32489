package run

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExitCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Run(Options{}, func(context.Context) error { return nil }))
	assert.Equal(t, 1, Run(Options{}, func(context.Context) error { return errors.New("failed") }))
}

func TestInterruptCancelsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	signalCh := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		done <- ctx.Err()
	}()

	signalCh <- syscall.SIGTERM
	code := wait(ctx, cancel, Options{ShutdownTimeout: time.Second}, signalCh, done)
	assert.Equal(t, 0, code)
}

func TestShutdownTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalCh := make(chan os.Signal, 1)
	signalCh <- syscall.SIGTERM

	code := wait(ctx, cancel, Options{ShutdownTimeout: 10 * time.Millisecond}, signalCh, make(chan error))
	assert.Equal(t, 1, code)
}
