// Package run executes a long running command with signal handling.
package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/safing/biodb/log"
)

var sigUSR1 = syscall.Signal(0xa) // dummy for windows

// Options configure Run.
type Options struct {
	// PrintStackOnExit prints the stack before shutting down.
	PrintStackOnExit bool
	// InputSignals emulates signals using stdin.
	InputSignals bool
	// ShutdownTimeout is how long fn may take to return after an interrupt.
	ShutdownTimeout time.Duration
}

// Run executes fn until it returns or the program is interrupted, in which
// case the context passed to fn is canceled. It returns the exit code.
func Run(opts Options, fn func(ctx context.Context) error) int {
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 3 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	// catch interrupt for clean shutdown
	signalCh := make(chan os.Signal, 1)
	if opts.InputSignals {
		go inputSignals(signalCh)
	}
	signal.Notify(
		signalCh,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		sigUSR1,
	)
	defer signal.Stop(signalCh)

	return wait(ctx, cancel, opts, signalCh, done)
}

func wait(ctx context.Context, cancel context.CancelFunc, opts Options, signalCh chan os.Signal, done <-chan error) int {
	for {
		select {
		case sig := <-signalCh:
			// only print and continue to wait if SIGUSR1
			if sig == sigUSR1 {
				_ = pprof.Lookup("goroutine").WriteTo(os.Stderr, 1)
				continue
			}

			fmt.Println(" <INTERRUPT>")
			log.Warning("main: program was interrupted, shutting down.")
			if opts.PrintStackOnExit {
				printStackTo(os.Stdout)
			}
			cancel()
			return waitForShutdown(opts, signalCh, done)

		case err := <-done:
			return exitCode(ctx, err)
		}
	}
}

func waitForShutdown(opts Options, signalCh chan os.Signal, done <-chan error) int {
	timeout := time.NewTimer(opts.ShutdownTimeout)
	defer timeout.Stop()

	forceCnt := 5
	for {
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("main: shutdown failed: %s", err)
				return 1
			}
			return 0

		case <-signalCh:
			forceCnt--
			if forceCnt > 0 {
				fmt.Printf(" <INTERRUPT> again, but already shutting down. %d more to force.\n", forceCnt)
				continue
			}
			fmt.Fprintln(os.Stderr, "===== FORCED EXIT =====")
			printStackTo(os.Stderr)
			return 1

		case <-timeout.C:
			fmt.Fprintln(os.Stderr, "===== TAKING TOO LONG FOR SHUTDOWN =====")
			printStackTo(os.Stderr)
			return 1
		}
	}
}

func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return 0
	default:
		log.Errorf("main: %s", err)
		return 1
	}
}

func inputSignals(signalCh chan os.Signal) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch scanner.Text() {
		case "SIGHUP":
			signalCh <- syscall.SIGHUP
		case "SIGINT":
			signalCh <- syscall.SIGINT
		case "SIGQUIT":
			signalCh <- syscall.SIGQUIT
		case "SIGTERM":
			signalCh <- syscall.SIGTERM
		case "SIGUSR1":
			signalCh <- sigUSR1
		}
	}
}

func printStackTo(writer io.Writer) {
	fmt.Fprintln(writer, "=== PRINTING TRACES ===")
	fmt.Fprintln(writer, "=== GOROUTINES ===")
	_ = pprof.Lookup("goroutine").WriteTo(writer, 1)
	fmt.Fprintln(writer, "=== BLOCKING ===")
	_ = pprof.Lookup("block").WriteTo(writer, 1)
	fmt.Fprintln(writer, "=== MUTEXES ===")
	_ = pprof.Lookup("mutex").WriteTo(writer, 1)
	fmt.Fprintln(writer, "=== END TRACES ===")
}
