package checkisilon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateThresholds(t *testing.T) {
	for _, check := range []struct {
		name      string
		available uint64
		warning   uint64
		critical  uint64
		expect    int64
	}{
		{"between floors", 500, 1000, 200, CheckExitWarning},
		{"below both floors still warns", 150, 1000, 200, CheckExitWarning},
		{"plenty of space", 5000, 1000, 200, CheckExitOK},
		{"exactly at warning floor", 1000, 1000, 200, CheckExitOK},
		{"equal floors, below", 199, 200, 200, CheckExitWarning},
		{"equal floors, at floor", 200, 200, 200, CheckExitOK},
		{"zero floors", 5, 0, 0, CheckExitOK},
	} {
		t.Run(check.name, func(t *testing.T) {
			conf := &Configuration{
				WarningBytes:  check.warning,
				CriticalBytes: check.critical,
			}
			res := Evaluate(&CapacitySnapshot{Available: check.available}, conf)
			assert.Equalf(t, check.expect, res.State, "state for available=%d", check.available)
		})
	}
}

func TestEvaluateOutput(t *testing.T) {
	conf := &Configuration{WarningBytes: 1000, CriticalBytes: 200}
	res := Evaluate(&CapacitySnapshot{Available: 500}, conf)
	assert.Equalf(t, "ISILON WARNING - 500 B left", res.BuildPluginOutput(), "output matches")

	res = Evaluate(&CapacitySnapshot{Available: 5120000000000}, conf)
	assert.Equalf(t, "ISILON OK - 5,120 GB left", res.BuildPluginOutput(), "output matches")
}

func TestEvaluatePerfData(t *testing.T) {
	conf := &Configuration{WarningBytes: 1000, CriticalBytes: 200}
	res := Evaluate(&CapacitySnapshot{Available: 5000}, conf)
	assert.Emptyf(t, res.Metrics, "no perfdata without the flag")
	assert.Equalf(t, "ISILON OK - 5,000 B left", res.BuildPluginOutput(), "no pipe without the flag")

	conf = &Configuration{WarningBytes: 1000, CriticalBytes: 200, IncludePerfData: true}
	res = Evaluate(&CapacitySnapshot{Available: 5000}, conf)
	assert.Equalf(t,
		"ISILON OK - 5,000 B left | ifsAvailable=5000;1000;200",
		res.BuildPluginOutput(),
		"perfdata carries value, warning and critical in fixed order",
	)
}

func TestPrettyBytes(t *testing.T) {
	assert.Equal(t, "0 B", prettyBytes(0))
	assert.Equal(t, "999,999,999 B", prettyBytes(999999999))
	assert.Equal(t, "1 GB", prettyBytes(1000000000))
	assert.Equal(t, "38,123 GB", prettyBytes(38123456789012))
}
