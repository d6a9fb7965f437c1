package checkisilon

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// ConfigurationError is returned for bad or missing flags, before any
// network activity happens.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

// Configuration is the validated, immutable input for a single check run.
type Configuration struct {
	Hostname        string
	Port            uint16
	WarningBytes    uint64
	CriticalBytes   uint64
	Timeout         uint32
	Community       string
	Protocol        string
	SecLevel        string
	SecName         string
	AuthProtocol    string
	AuthPassword    string
	PrivProtocol    string
	PrivPassword    string
	IncludePerfData bool
	Verbose         bool
	ShowVersion     bool
}

type options struct {
	Hostname        string `short:"H" long:"hostname" description:"Hostname or address of the Isilon cluster"`
	Port            uint16 `short:"p" long:"port" default:"161" description:"SNMP port number"`
	Warning         string `short:"w" long:"warning" description:"Warning floor for available bytes"`
	Critical        string `short:"c" long:"critical" description:"Critical floor for available bytes"`
	Timeout         uint32 `short:"t" long:"timeout" default:"10" description:"Timeout in seconds, minimum 2"`
	Community       string `short:"C" long:"community" default:"public" description:"SNMP community (version 1/2c)"`
	Protocol        string `short:"P" long:"protocol" default:"2c" description:"SNMP version: 1, 2c or 3"`
	SecLevel        string `short:"L" long:"seclevel" default:"authPriv" description:"SNMPv3 security level: noAuthNoPriv, authNoPriv or authPriv"`
	SecName         string `short:"U" long:"secname" description:"SNMPv3 user name"`
	AuthProtocol    string `short:"a" long:"authproto" default:"SHA" description:"SNMPv3 authentication protocol: MD5 or SHA"`
	AuthPassword    string `short:"A" long:"authpassword" description:"SNMPv3 authentication password"`
	PrivProtocol    string `short:"x" long:"privproto" default:"AES" description:"SNMPv3 privacy protocol: DES or AES"`
	PrivPassword    string `short:"X" long:"privpassword" description:"SNMPv3 privacy password"`
	CredentialsFile string `short:"F" long:"credentials-file" description:"YAML file supplying community / SNMPv3 secrets"`
	PerfData        bool   `short:"f" long:"perfdata" description:"Append performance data to the output"`
	Verbose         bool   `short:"v" long:"verbose" description:"Verbose debug output on stderr"`
	ShowVersion     bool   `short:"V" long:"version" description:"Print version and exit"`
}

// NewConfiguration parses and validates the command line arguments. It
// returns a *ConfigurationError (or the go-flags help error) on any problem.
func NewConfiguration(args []string) (*Configuration, error) {
	opts := &options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = NAME
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if opts.ShowVersion {
		return &Configuration{ShowVersion: true}, nil
	}

	if opts.CredentialsFile != "" {
		if err := opts.applyCredentialsFile(opts.CredentialsFile); err != nil {
			return nil, &ConfigurationError{Reason: err.Error()}
		}
	}

	return opts.toConfiguration()
}

func (opts *options) toConfiguration() (*Configuration, error) {
	if opts.Hostname == "" {
		return nil, &ConfigurationError{Reason: "hostname is required (-H)"}
	}
	if opts.Warning == "" {
		return nil, &ConfigurationError{Reason: "warning threshold is required (-w)"}
	}
	if opts.Critical == "" {
		return nil, &ConfigurationError{Reason: "critical threshold is required (-c)"}
	}

	warning, err := parseThreshold(opts.Warning)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("invalid warning threshold %q: %s", opts.Warning, err.Error())}
	}
	critical, err := parseThreshold(opts.Critical)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("invalid critical threshold %q: %s", opts.Critical, err.Error())}
	}

	// thresholds are floors of remaining space, so warn must not be below crit
	if warning < critical {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("warning threshold (%d) must not be below the critical threshold (%d)", warning, critical)}
	}

	if opts.Timeout < 2 {
		return nil, &ConfigurationError{Reason: "timeout must be at least 2 seconds"}
	}

	switch opts.Protocol {
	case "1", "2c", "3":
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unsupported SNMP version %q, use 1, 2c or 3", opts.Protocol)}
	}

	if opts.Protocol == "3" {
		if err := opts.validateV3(); err != nil {
			return nil, err
		}
	}

	return &Configuration{
		Hostname:        opts.Hostname,
		Port:            opts.Port,
		WarningBytes:    warning,
		CriticalBytes:   critical,
		Timeout:         opts.Timeout,
		Community:       opts.Community,
		Protocol:        opts.Protocol,
		SecLevel:        opts.SecLevel,
		SecName:         opts.SecName,
		AuthProtocol:    opts.AuthProtocol,
		AuthPassword:    opts.AuthPassword,
		PrivProtocol:    opts.PrivProtocol,
		PrivPassword:    opts.PrivPassword,
		IncludePerfData: opts.PerfData,
		Verbose:         opts.Verbose,
	}, nil
}

func (opts *options) validateV3() error {
	switch opts.SecLevel {
	case "noAuthNoPriv":
		return nil
	case "authNoPriv", "authPriv":
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unsupported security level %q, use noAuthNoPriv, authNoPriv or authPriv", opts.SecLevel)}
	}

	if opts.SecName == "" {
		return &ConfigurationError{Reason: "SNMPv3 user name is required (-U)"}
	}
	if opts.AuthPassword == "" {
		return &ConfigurationError{Reason: "SNMPv3 authentication password is required (-A)"}
	}
	switch opts.AuthProtocol {
	case "MD5", "SHA":
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unsupported authentication protocol %q, use MD5 or SHA", opts.AuthProtocol)}
	}

	if opts.SecLevel == "authPriv" {
		if opts.PrivPassword == "" {
			return &ConfigurationError{Reason: "SNMPv3 privacy password is required (-X)"}
		}
		switch opts.PrivProtocol {
		case "DES", "AES":
		default:
			return &ConfigurationError{Reason: fmt.Sprintf("unsupported privacy protocol %q, use DES or AES", opts.PrivProtocol)}
		}
	}

	return nil
}

// parseThreshold parses a raw byte count. A single trailing "%" is stripped
// and ignored, the plugin has always tolerated it.
func parseThreshold(raw string) (uint64, error) {
	value := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	num, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a non-negative byte count: %s", err.Error())
	}

	return num, nil
}

// credentials is the schema of the optional credentials file. It keeps SNMP
// secrets out of the process list.
type credentials struct {
	Community    string `yaml:"community"`
	SecName      string `yaml:"username"`
	AuthProtocol string `yaml:"authprotocol"`
	AuthPassword string `yaml:"authpassword"`
	PrivProtocol string `yaml:"privprotocol"`
	PrivPassword string `yaml:"privpassword"`
}

// applyCredentialsFile merges secrets from a YAML file into the options.
// File values take precedence over command line values.
func (opts *options) applyCredentialsFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read credentials file: %s", err.Error())
	}

	creds := &credentials{}
	if err := yaml.Unmarshal(raw, creds); err != nil {
		return fmt.Errorf("cannot parse credentials file %s: %s", path, err.Error())
	}

	if creds.Community != "" {
		opts.Community = creds.Community
	}
	if creds.SecName != "" {
		opts.SecName = creds.SecName
	}
	if creds.AuthProtocol != "" {
		opts.AuthProtocol = creds.AuthProtocol
	}
	if creds.AuthPassword != "" {
		opts.AuthPassword = creds.AuthPassword
	}
	if creds.PrivProtocol != "" {
		opts.PrivProtocol = creds.PrivProtocol
	}
	if creds.PrivPassword != "" {
		opts.PrivPassword = creds.PrivPassword
	}

	return nil
}
