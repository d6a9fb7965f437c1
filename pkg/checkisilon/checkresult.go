package checkisilon

import (
	"fmt"
	"strings"
)

const (
	// CheckExitOK is used for normal exits.
	CheckExitOK = int64(0)

	// CheckExitWarning is used for warnings.
	CheckExitWarning = int64(1)

	// CheckExitCritical is used for critical errors.
	CheckExitCritical = int64(2)

	// CheckExitUnknown is used when the check runs into a problem itself.
	// This plugin has always exited 4 here instead of the conventional 3,
	// and deployed monitoring configs match on that code.
	CheckExitUnknown = int64(4)
)

// CheckResult is the result of a single check run. State doubles as the
// process exit code.
type CheckResult struct {
	State   int64
	Output  string
	Metrics []*CheckMetric
}

// Finalize resolves the ${status} macro in the output text.
func (cr *CheckResult) Finalize() {
	cr.Output = strings.ReplaceAll(cr.Output, "${status}", cr.StateString())
}

func (cr *CheckResult) StateString() string {
	switch cr.State {
	case CheckExitOK:
		return "OK"
	case CheckExitWarning:
		return "WARNING"
	case CheckExitCritical:
		return "CRITICAL"
	}

	return "UNKNOWN"
}

// BuildPluginOutput returns the final status line including perfdata.
func (cr *CheckResult) BuildPluginOutput() string {
	output := cr.Output
	if len(cr.Metrics) > 0 {
		perf := make([]string, 0, len(cr.Metrics))
		for _, metric := range cr.Metrics {
			perf = append(perf, metric.String())
		}
		output = output + " | " + strings.Join(perf, " ")
	}

	return output
}

// CheckMetric contains a single performance value with its thresholds.
type CheckMetric struct {
	Name     string
	Value    uint64
	Warning  uint64
	Critical uint64
}

func (m *CheckMetric) String() string {
	return fmt.Sprintf("%s=%d;%d;%d", m.Name, m.Value, m.Warning, m.Critical)
}
