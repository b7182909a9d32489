package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	outputLock   sync.Mutex
	outputWriter io.Writer = os.Stdout
	useColor               = true
)

// SetOutput redirects all log lines to w. Colors are disabled for writers
// other than stdout.
func SetOutput(w io.Writer) {
	outputLock.Lock()
	defer outputLock.Unlock()

	outputWriter = w
	useColor = w == os.Stdout
}

func writeLine(line *logLine, duplicates uint64) {
	outputLock.Lock()
	defer outputLock.Unlock()

	fmt.Fprintln(outputWriter, formatLine(line, duplicates, useColor))
}

func startWriter() {
	shutdownWaitGroup.Add(1)
	go writer()
}

func writer() {
	defer shutdownWaitGroup.Done()

	var lastLine *logLine
	var duplicates uint64

	for {
		// wait until logs need to be processed
		select {
		case <-logsWaiting:
			logsWaitingFlag.UnSet()
		case <-forceEmptyingOfBuffer:
		case <-shutdownSignal:
		}

		// write all the logs!
	writeLoop:
		for {
			select {
			case line := <-logBuffer:
				// look for duplicates
				if lastLine != nil && lastLine.Equal(line) {
					duplicates++
					continue writeLoop
				}

				// write line, with duplicate count of the previous one
				if lastLine != nil && duplicates > 0 {
					writeLine(lastLine, duplicates)
				}
				writeLine(line, 0)
				lastLine = line
				duplicates = 0

			case <-time.After(10 * time.Millisecond):
				// flush duplicate count
				if lastLine != nil && duplicates > 0 {
					writeLine(lastLine, duplicates)
					duplicates = 0
				}
				break writeLoop

			case <-forceEmptyingOfBuffer:
				// the buffer is being emptied right now
			}
		}

		select {
		case <-shutdownSignal:
			writeLine(&logLine{
				msg:       "===== LOGGING STOPPED =====",
				level:     WarningLevel,
				timestamp: time.Now(),
			}, 0)
			return
		default:
		}
	}
}
