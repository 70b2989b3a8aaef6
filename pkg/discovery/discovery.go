package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// mDNS service types advertised by networked instruments.
const (
	// ServiceSCPIRaw is the raw socket command interface.
	ServiceSCPIRaw = "_scpi-raw._tcp"

	// ServiceLXI is the LXI instrument service.
	ServiceLXI = "_lxi._tcp"

	// Domain is the mDNS domain to browse.
	Domain = "local."

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second
)

// ErrNotFound indicates no matching instrument appeared before the
// browse ended.
var ErrNotFound = errors.New("instrument not found")

// Service is one discovered instrument endpoint.
type Service struct {
	// Instance is the advertised instance name.
	Instance string

	// HostName is the advertised host name.
	HostName string

	// Type is the mDNS service type the entry came from.
	Type string

	// Addresses holds all IP addresses the instrument was seen on.
	Addresses []string

	// Port is the advertised command port.
	Port int

	// TXT holds the raw TXT records.
	TXT []string
}

// Address returns a host:port suitable for transport.Dial, preferring
// the first resolved IP over the host name.
func (s *Service) Address() string {
	host := s.HostName
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for browse operations.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Types lists the mDNS service types to watch.
	// Default: _scpi-raw._tcp and _lxi._tcp.
	Types []string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Types:         []string{ServiceSCPIRaw, ServiceLXI},
	}
}
