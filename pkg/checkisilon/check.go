package checkisilon

import (
	"context"
	"errors"
	"fmt"
	"io"

	flags "github.com/jessevdk/go-flags"
)

const (
	// NAME contains the name of this plugin.
	NAME = "check_isilon"

	// VERSION contains the version of this plugin.
	VERSION = "1.0.2"
)

// Check runs the plugin once: parse flags, fetch the capacity counters over
// SNMP, evaluate the thresholds and write the status line to output. The
// return value is the process exit code.
func Check(ctx context.Context, output io.Writer, args []string) int {
	conf, err := NewConfiguration(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(output, flagsErr.Message)

			return int(CheckExitUnknown)
		}

		return report(output, unknownResult(err))
	}

	if conf.ShowVersion {
		fmt.Fprintf(output, "%s v%s\n", NAME, VERSION)

		return int(CheckExitOK)
	}

	if conf.Verbose {
		setLogLevel("debug")
	}

	snapshot, err := NewFetcher(conf).Fetch(ctx)
	if err != nil {
		return report(output, unknownResult(err))
	}

	return report(output, Evaluate(snapshot, conf))
}

func report(output io.Writer, result *CheckResult) int {
	fmt.Fprintln(output, result.BuildPluginOutput())

	return int(result.State)
}

func unknownResult(err error) *CheckResult {
	return &CheckResult{
		State:  CheckExitUnknown,
		Output: "ISILON UNKNOWN - " + err.Error(),
	}
}
