package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(instance string, port int, v4 ...string) *zeroconf.ServiceEntry {
	entry := &zeroconf.ServiceEntry{}
	entry.Instance = instance
	entry.HostName = instance + ".local."
	entry.Port = port
	for _, a := range v4 {
		entry.AddrIPv4 = append(entry.AddrIPv4, net.ParseIP(a))
	}
	return entry
}

func TestServiceFromEntry(t *testing.T) {
	entry := testEntry("K2461-04089786", 5025, "192.168.1.80")
	entry.Text = []string{"Manufacturer=Keithley", "Model=2461"}

	svc := serviceFromEntry(entry, ServiceSCPIRaw)
	require.NotNil(t, svc)
	assert.Equal(t, "K2461-04089786", svc.Instance)
	assert.Equal(t, "K2461-04089786.local.", svc.HostName)
	assert.Equal(t, ServiceSCPIRaw, svc.Type)
	assert.Equal(t, []string{"192.168.1.80"}, svc.Addresses)
	assert.Equal(t, 5025, svc.Port)
	assert.Equal(t, "192.168.1.80:5025", svc.Address())
}

func TestServiceFromEntryRejectsUnusable(t *testing.T) {
	assert.Nil(t, serviceFromEntry(nil, ServiceSCPIRaw))
	assert.Nil(t, serviceFromEntry(testEntry("", 5025), ServiceSCPIRaw))
	assert.Nil(t, serviceFromEntry(testEntry("K2461", 0), ServiceSCPIRaw))
}

func TestServiceAddressFallsBackToHostName(t *testing.T) {
	svc := &Service{HostName: "scope.local.", Port: 5025}
	assert.Equal(t, "scope.local.:5025", svc.Address())
}

func TestAggregateReportsEachInstanceOnce(t *testing.T) {
	b := NewBrowser(DefaultBrowserConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	out := make(chan *Service, 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.aggregate(ctx, ServiceSCPIRaw, entries, removed, out)
	}()

	// The same instrument appears on two interfaces.
	entries <- testEntry("K2461", 5025, "192.168.1.80")
	entries <- testEntry("K2461", 5025, "10.0.0.80")
	entries <- testEntry("DMM6500", 5025, "192.168.1.81")
	close(entries)
	close(removed)
	<-done

	close(out)
	var reported []*Service
	for svc := range out {
		reported = append(reported, svc)
	}

	require.Len(t, reported, 2)
	assert.Equal(t, "K2461", reported[0].Instance)
	assert.Equal(t, []string{"192.168.1.80", "10.0.0.80"}, reported[0].Addresses)
	assert.Equal(t, "DMM6500", reported[1].Instance)
}

func TestAggregateRemovalAllowsRediscovery(t *testing.T) {
	b := NewBrowser(DefaultBrowserConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	out := make(chan *Service, 4)

	go b.aggregate(ctx, ServiceSCPIRaw, entries, removed, out)

	entries <- testEntry("K2461", 5025, "192.168.1.80")
	removed <- testEntry("K2461", 5025)
	entries <- testEntry("K2461", 5025, "192.168.1.80")
	close(entries)

	deadline := time.After(time.Second)
	count := 0
	for count < 2 {
		select {
		case <-out:
			count++
		case <-deadline:
			t.Fatalf("got %d reports, want 2", count)
		}
	}
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, merged)
}

func TestDefaultBrowserConfig(t *testing.T) {
	config := DefaultBrowserConfig()
	assert.Equal(t, BrowseTimeout, config.BrowseTimeout)
	assert.Equal(t, []string{ServiceSCPIRaw, ServiceLXI}, config.Types)
}

func TestBrowserStopBeforeBrowse(t *testing.T) {
	b := NewBrowser(DefaultBrowserConfig())
	b.Stop()

	_, err := b.Browse(context.Background())
	assert.Error(t, err)
}

// stubbedBrowser returns a browser whose mDNS layer replays the given
// entries for every service type.
func stubbedBrowser(config BrowserConfig, replay ...*zeroconf.ServiceEntry) *Browser {
	b := NewBrowser(config)
	b.browse = func(ctx context.Context, service, domain string, entries, removed chan<- *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error {
		for _, e := range replay {
			select {
			case entries <- e:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		<-ctx.Done()
		return ctx.Err()
	}
	return b
}

func TestBrowseReportsDiscoveredInstruments(t *testing.T) {
	config := DefaultBrowserConfig()
	config.Types = []string{ServiceSCPIRaw}
	b := stubbedBrowser(config,
		testEntry("K2461", 5025, "192.168.1.80"),
		testEntry("DMM6500", 5025, "192.168.1.81"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	results, err := b.Browse(ctx)
	require.NoError(t, err)

	seen := map[string]bool{}
	for len(seen) < 2 {
		select {
		case svc := <-results:
			require.NotNil(t, svc)
			seen[svc.Instance] = true
		case <-time.After(time.Second):
			t.Fatalf("saw %d instruments, want 2", len(seen))
		}
	}
	cancel()
	assert.True(t, seen["K2461"])
	assert.True(t, seen["DMM6500"])
}

func TestFindByInstance(t *testing.T) {
	config := DefaultBrowserConfig()
	config.Types = []string{ServiceSCPIRaw}
	config.BrowseTimeout = time.Second
	b := stubbedBrowser(config,
		testEntry("DMM6500", 5025, "192.168.1.81"),
		testEntry("K2461", 5025, "192.168.1.80"),
	)

	svc, err := b.FindByInstance(context.Background(), "K2461")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.80:5025", svc.Address())
}

func TestFindByInstanceTimesOut(t *testing.T) {
	config := DefaultBrowserConfig()
	config.Types = []string{ServiceSCPIRaw}
	config.BrowseTimeout = 50 * time.Millisecond
	b := stubbedBrowser(config)

	_, err := b.FindByInstance(context.Background(), "missing")
	assert.Error(t, err)
}
