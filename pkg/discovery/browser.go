package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// browseFunc matches zeroconf.Browse; tests substitute a stub.
type browseFunc func(ctx context.Context, service, domain string, entries, removed chan<- *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error

// Browser browses mDNS for instrument services.
type Browser struct {
	config BrowserConfig
	browse browseFunc

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
}

// NewBrowser creates a browser. Zero-value config fields fall back to
// DefaultBrowserConfig.
func NewBrowser(config BrowserConfig) *Browser {
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	if len(config.Types) == 0 {
		config.Types = []string{ServiceSCPIRaw, ServiceLXI}
	}
	return &Browser{config: config, browse: zeroconf.Browse}
}

// Browse watches all configured service types until the context ends.
// Each instrument is reported once per service type; addresses seen on
// additional interfaces are merged into the already-reported entry.
// The returned channel is closed when browsing completes.
func (b *Browser) Browse(ctx context.Context) (<-chan *Service, error) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return nil, context.Canceled
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	out := make(chan *Service)
	opts := b.browserOptions()

	var wg sync.WaitGroup
	for _, serviceType := range b.config.Types {
		entries := make(chan *zeroconf.ServiceEntry)
		removed := make(chan *zeroconf.ServiceEntry)

		wg.Add(1)
		go func(serviceType string) {
			defer wg.Done()
			b.aggregate(ctx, serviceType, entries, removed, out)
		}(serviceType)

		go func(serviceType string) {
			defer close(entries)
			defer close(removed)
			_ = b.browse(ctx, serviceType, Domain, entries, removed, opts...)
		}(serviceType)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}

// FindByInstance browses until an instrument with the given instance
// name appears. Returns ErrNotFound if browsing finishes first.
func (b *Browser) FindByInstance(ctx context.Context, instance string) (*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if svc.Instance == instance {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop cancels any active browse.
func (b *Browser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	if b.cancel != nil {
		b.cancel()
	}
}

// aggregate merges per-interface entries into one Service per instance
// and forwards each new instance downstream.
func (b *Browser) aggregate(ctx context.Context, serviceType string, entries, removed <-chan *zeroconf.ServiceEntry, out chan<- *Service) {
	services := make(map[string]*Service)

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			svc := serviceFromEntry(entry, serviceType)
			if svc == nil {
				continue
			}

			if existing, found := services[svc.Instance]; found {
				existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				continue
			}
			services[svc.Instance] = svc
			select {
			case out <- svc:
			case <-ctx.Done():
				return
			}

		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			delete(services, entry.Instance)

		case <-ctx.Done():
			return
		}
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// serviceFromEntry converts a zeroconf entry, or returns nil for
// entries that carry no usable endpoint.
func serviceFromEntry(entry *zeroconf.ServiceEntry, serviceType string) *Service {
	if entry == nil || entry.Instance == "" || entry.Port == 0 {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Service{
		Instance:  entry.Instance,
		HostName:  entry.HostName,
		Type:      serviceType,
		Addresses: addrs,
		Port:      entry.Port,
		TXT:       entry.Text,
	}
}

// mergeAddresses appends addresses not already present.
func mergeAddresses(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		seen[a] = struct{}{}
	}
	for _, a := range incoming {
		if _, ok := seen[a]; !ok {
			existing = append(existing, a)
		}
	}
	return existing
}
