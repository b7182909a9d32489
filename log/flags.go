package log

import "flag"

var (
	logLevelFlag     string
	pkgLogLevelsFlag string
)

func init() {
	flag.StringVar(&logLevelFlag, "log", "", "set log level to [trace|debug|info|warning|error|critical]")
	flag.StringVar(&pkgLogLevelsFlag, "plog", "", "set log level of packages: splitter=trace,rfam=debug")
}

// SetFlags sets the values that would otherwise be parsed from the command
// line. Callers that do not use the flag package (eg. cobra) must call it
// before Start.
func SetFlags(level, pkgLevels string) {
	logLevelFlag = level
	pkgLogLevelsFlag = pkgLevels
}
