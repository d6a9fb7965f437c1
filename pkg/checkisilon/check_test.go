package checkisilon

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckConfigurationError(t *testing.T) {
	output := bytes.NewBuffer(nil)
	rc := Check(context.Background(), output, []string{"-w", "1000", "-c", "200"})

	assert.Equal(t, int(CheckExitUnknown), rc)
	assert.Regexpf(t,
		`^ISILON UNKNOWN - hostname is required`,
		output.String(),
		"output matches",
	)
}

func TestCheckHelp(t *testing.T) {
	output := bytes.NewBuffer(nil)
	rc := Check(context.Background(), output, []string{"--help"})

	assert.Equal(t, int(CheckExitUnknown), rc)
	assert.Containsf(t, output.String(), "Usage", "usage text printed")
	assert.Containsf(t, output.String(), "--warning", "flags listed")
}

func TestCheckVersion(t *testing.T) {
	output := bytes.NewBuffer(nil)
	rc := Check(context.Background(), output, []string{"-V"})

	assert.Equal(t, int(CheckExitOK), rc)
	assert.Equal(t, "check_isilon v"+VERSION+"\n", output.String())
}

func TestUnknownResultRendering(t *testing.T) {
	res := unknownResult(&TimeoutError{Hostname: "isi01"})
	assert.Equal(t, CheckExitUnknown, res.State)
	assert.Equal(t, "ISILON UNKNOWN - No answer from host isi01", res.BuildPluginOutput())

	res = unknownResult(&IncompleteResponseError{Missing: []CapacityMetric{MetricFreeBytes}})
	assert.Equal(t, CheckExitUnknown, res.State)
	assert.Contains(t, res.BuildPluginOutput(), "incomplete SNMP response")
}
