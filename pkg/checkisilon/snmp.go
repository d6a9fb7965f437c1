package checkisilon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// CapacityMetric enumerates the four ISILON-MIB counters fetched per run.
type CapacityMetric int

const (
	MetricTotalBytes CapacityMetric = iota
	MetricUsedBytes
	MetricAvailableBytes
	MetricFreeBytes
)

// capacityMetrics lists all metrics in request order.
var capacityMetrics = []CapacityMetric{
	MetricTotalBytes,
	MetricUsedBytes,
	MetricAvailableBytes,
	MetricFreeBytes,
}

// Scalar instances from the ifsFilesystem group of the ISILON-MIB
// (enterprise branch 12124). ifsFreeBytes counts virtual hot spare headroom,
// ifsAvailableBytes does not, so free >= available on a healthy cluster.
var capacityOIDs = map[CapacityMetric]string{
	MetricTotalBytes:     ".1.3.6.1.4.1.12124.1.3.1.0",
	MetricUsedBytes:      ".1.3.6.1.4.1.12124.1.3.2.0",
	MetricAvailableBytes: ".1.3.6.1.4.1.12124.1.3.3.0",
	MetricFreeBytes:      ".1.3.6.1.4.1.12124.1.3.4.0",
}

func (m CapacityMetric) OID() string {
	return capacityOIDs[m]
}

func (m CapacityMetric) String() string {
	switch m {
	case MetricTotalBytes:
		return "ifsTotalBytes"
	case MetricUsedBytes:
		return "ifsUsedBytes"
	case MetricAvailableBytes:
		return "ifsAvailableBytes"
	case MetricFreeBytes:
		return "ifsFreeBytes"
	}

	return "unknown"
}

// metricForOID maps a response OID back to its metric.
func metricForOID(oid string) (CapacityMetric, bool) {
	oid = "." + strings.TrimPrefix(oid, ".")
	for metric, known := range capacityOIDs {
		if oid == known {
			return metric, true
		}
	}

	return 0, false
}

// CapacitySnapshot holds the four byte counters of one SNMP exchange. All
// four values are defined together or the snapshot does not exist.
type CapacitySnapshot struct {
	Total     uint64
	Used      uint64
	Available uint64
	Free      uint64
}

// ConnectionError means the SNMP session could not be established or the
// exchange failed for a reason other than a timeout.
type ConnectionError struct {
	Hostname string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("SNMP connection to %s failed: %s", e.Hostname, e.Err.Error())
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TimeoutError means the host did not answer before the deadline. Network
// timeout and deadline expiry surface identically.
type TimeoutError struct {
	Hostname string
}

func (e *TimeoutError) Error() string {
	return "No answer from host " + e.Hostname
}

// IncompleteResponseError means the response did not carry all four
// counters. A partial response never yields a partial snapshot.
type IncompleteResponseError struct {
	Missing []CapacityMetric
}

func (e *IncompleteResponseError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, metric := range e.Missing {
		names = append(names, metric.String())
	}

	return "incomplete SNMP response, missing " + strings.Join(names, ", ")
}

// snmpSession is the slice of gosnmp used by the fetcher, split out so tests
// can fake the wire.
type snmpSession interface {
	Connect() error
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Close() error
}

type gosnmpSession struct {
	client *gosnmp.GoSNMP
}

func (s *gosnmpSession) Connect() error {
	return s.client.Connect()
}

func (s *gosnmpSession) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	return s.client.Get(oids)
}

func (s *gosnmpSession) Close() error {
	if s.client.Conn == nil {
		return nil
	}

	return s.client.Conn.Close()
}

// Fetcher retrieves the capacity counters in a single GET round trip. The
// session lives for exactly one exchange.
type Fetcher struct {
	conf       *Configuration
	newSession func(ctx context.Context, conf *Configuration) snmpSession
}

func NewFetcher(conf *Configuration) *Fetcher {
	return &Fetcher{
		conf:       conf,
		newSession: newGoSNMPSession,
	}
}

func newGoSNMPSession(ctx context.Context, conf *Configuration) snmpSession {
	client := &gosnmp.GoSNMP{
		Target:    conf.Hostname,
		Port:      conf.Port,
		Transport: "udp",
		Community: conf.Community,
		Version:   snmpVersion(conf.Protocol),
		Timeout:   time.Duration(conf.Timeout) * time.Second,
		Retries:   0, // retry policy belongs to the scheduler invoking us
		MaxOids:   gosnmp.Default.MaxOids,
		Context:   ctx,
	}

	if conf.Verbose {
		client.Logger = gosnmp.NewLogger(NewStandardLog("debug"))
	}

	if conf.Protocol == "3" {
		client.SecurityModel = gosnmp.UserSecurityModel
		client.MsgFlags = msgFlags(conf.SecLevel)
		client.SecurityParameters = usmParameters(conf)
	}

	return &gosnmpSession{client: client}
}

func snmpVersion(proto string) gosnmp.SnmpVersion {
	switch proto {
	case "1":
		return gosnmp.Version1
	case "3":
		return gosnmp.Version3
	}

	return gosnmp.Version2c
}

func msgFlags(secLevel string) gosnmp.SnmpV3MsgFlags {
	switch secLevel {
	case "noAuthNoPriv":
		return gosnmp.NoAuthNoPriv
	case "authNoPriv":
		return gosnmp.AuthNoPriv
	}

	return gosnmp.AuthPriv
}

func usmParameters(conf *Configuration) *gosnmp.UsmSecurityParameters {
	sec := &gosnmp.UsmSecurityParameters{
		UserName: conf.SecName,
	}

	if conf.SecLevel == "authNoPriv" || conf.SecLevel == "authPriv" {
		sec.AuthenticationProtocol = gosnmp.SHA
		if conf.AuthProtocol == "MD5" {
			sec.AuthenticationProtocol = gosnmp.MD5
		}
		sec.AuthenticationPassphrase = conf.AuthPassword
	}

	if conf.SecLevel == "authPriv" {
		sec.PrivacyProtocol = gosnmp.AES
		if conf.PrivProtocol == "DES" {
			sec.PrivacyProtocol = gosnmp.DES
		}
		sec.PrivacyPassphrase = conf.PrivPassword
	}

	return sec
}

// Fetch performs the single SNMP exchange and returns the snapshot or one of
// the typed failures. The session is closed on every exit path.
func (f *Fetcher) Fetch(ctx context.Context) (*CapacitySnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(f.conf.Timeout)*time.Second)
	defer cancel()

	session := f.newSession(ctx, f.conf)
	if err := session.Connect(); err != nil {
		LogError(session.Close())

		return nil, &ConnectionError{Hostname: f.conf.Hostname, Err: err}
	}
	defer func() {
		LogError(session.Close())
	}()

	oids := make([]string, 0, len(capacityMetrics))
	for _, metric := range capacityMetrics {
		oids = append(oids, metric.OID())
	}

	log.Debugf("snmp get %s:%d %s", f.conf.Hostname, f.conf.Port, strings.Join(oids, " "))
	packet, err := session.Get(oids)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &TimeoutError{Hostname: f.conf.Hostname}
		}

		return nil, &ConnectionError{Hostname: f.conf.Hostname, Err: err}
	}

	return snapshotFromPacket(packet)
}

// isTimeout folds deadline expiry and network timeouts into one condition.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return strings.Contains(err.Error(), "timeout")
}

func snapshotFromPacket(packet *gosnmp.SnmpPacket) (*CapacitySnapshot, error) {
	values := make(map[CapacityMetric]uint64, len(capacityMetrics))
	for _, variable := range packet.Variables {
		metric, ok := metricForOID(variable.Name)
		if !ok {
			continue
		}
		switch variable.Type {
		case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.Null:
			continue
		default:
		}
		if variable.Value == nil {
			continue
		}
		values[metric] = gosnmp.ToBigInt(variable.Value).Uint64()
		log.Debugf("%s = %d", metric.String(), values[metric])
	}

	missing := make([]CapacityMetric, 0)
	for _, metric := range capacityMetrics {
		if _, ok := values[metric]; !ok {
			missing = append(missing, metric)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteResponseError{Missing: missing}
	}

	return &CapacitySnapshot{
		Total:     values[MetricTotalBytes],
		Used:      values[MetricUsedBytes],
		Available: values[MetricAvailableBytes],
		Free:      values[MetricFreeBytes],
	}, nil
}
