package checkisilon

import (
	"fmt"
	standardlog "log"
	"os"
	"strings"

	"github.com/kdar/factorlog"
)

// define all available log level.
const (
	// LogVerbosityDefault sets the default log level.
	LogVerbosityDefault = 1

	// LogVerbosityDebug sets the debug log level.
	LogVerbosityDebug = 2
)

var (
	DateTimeLogFormat = `[%{Date} %{Time "15:04:05.000"}]`
	LogFormat         = `[%{Severity}][%{ShortFile}:%{Line}] %{Message}`
	// stdout carries the plugin status line, all logging goes to stderr
	log = factorlog.New(os.Stderr, factorlog.NewStdFormatter(DateTimeLogFormat+LogFormat))
)

func init() {
	setLogLevel("error")
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "off":
		log.SetMinMaxSeverity(factorlog.StringToSeverity("PANIC"), factorlog.StringToSeverity("PANIC"))
	case "error", "info":
		log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityDefault)
	case "debug", "trace":
		log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityDebug)
	case "":
	default:
		log.Errorf("unknown log level: %s", level)
	}
}

func LogError(err error) {
	if err != nil {
		logErr := log.Output(factorlog.ERROR, 2, err.Error())
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "failed to log: %s (%s)\n", err.Error(), logErr.Error())
		}
	}
}

// LogWriter implements the io.Writer interface and simply logs everything
// with the given level.
type LogWriter struct {
	level string
}

func (l *LogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	callLevel := 2

	switch strings.ToLower(l.level) {
	case "error":
		err = log.Output(factorlog.ERROR, callLevel, msg)
	case "info":
		err = log.Output(factorlog.INFO, callLevel, msg)
	case "debug":
		err = log.Output(factorlog.DEBUG, callLevel, msg)
	}

	if err != nil {
		return 0, fmt.Errorf("log: %s", err.Error())
	}

	return len(msg), nil
}

func NewLogWriter(level string) *LogWriter {
	l := new(LogWriter)
	l.level = level

	return l
}

// NewStandardLog builds a standard library logger which forwards into the
// plugin log. Used to capture the SNMP packet trace in verbose mode.
func NewStandardLog(level string) *standardlog.Logger {
	writer := NewLogWriter(level)
	logger := standardlog.New(writer, "", 0)

	return logger
}
