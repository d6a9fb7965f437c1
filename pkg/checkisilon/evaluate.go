package checkisilon

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Evaluate turns one capacity snapshot into a plugin result. Pure function,
// no I/O. The verdict keys solely on the available counter, which excludes
// the virtual hot spare headroom still counted in free.
func Evaluate(snapshot *CapacitySnapshot, conf *Configuration) *CheckResult {
	state := CheckExitOK

	// The warning floor is compared first. Since warning >= critical, a value
	// below both floors reports WARNING and never reaches the critical
	// branch. Deployed monitoring configs match on this ordering, so it stays
	// (see DESIGN.md).
	switch {
	case snapshot.Available < conf.WarningBytes:
		state = CheckExitWarning
	case snapshot.Available < conf.CriticalBytes:
		state = CheckExitCritical
	}

	result := &CheckResult{
		State:  state,
		Output: fmt.Sprintf("ISILON ${status} - %s left", prettyBytes(snapshot.Available)),
	}
	result.Finalize()

	if conf.IncludePerfData {
		result.Metrics = append(result.Metrics, &CheckMetric{
			Name:     "ifsAvailable",
			Value:    snapshot.Available,
			Warning:  conf.WarningBytes,
			Critical: conf.CriticalBytes,
		})
	}

	return result
}

// prettyBytes renders a byte count the way the plugin always has: thousands
// grouping plus a coarse GB suffix once the value reaches one gigabyte.
func prettyBytes(num uint64) string {
	if num >= humanize.GByte {
		return humanize.Comma(int64(num/humanize.GByte)) + " GB"
	}

	return humanize.Comma(int64(num)) + " B"
}
