package provider

import (
	"os"
	"sync"
	"time"

	"github.com/framekit/walletwidget/internal/config"
)

// HostSource detects the wallet endpoint announced by an embedding frame
// host. The host exports FRAME_WALLET_ENDPOINT, possibly only some time
// after the widget process has started, so detection re-reads the
// environment on every call.
type HostSource struct {
	mu     sync.Mutex
	cached *Remote
}

// NewHostSource creates a HostSource.
func NewHostSource() *HostSource {
	return &HostSource{}
}

func (s *HostSource) Name() string { return "frame-host" }

// Detect returns the host provider, or nil when the widget runs standalone.
// The provider instance is reused while the endpoint URL is unchanged so
// that event subscriptions survive repeated resolution.
func (s *HostSource) Detect() Provider {
	url := os.Getenv(config.EnvHostEndpoint)
	if url == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil || s.cached.URL() != url {
		s.cached = NewRemote("frame-host", url, config.HostPollInterval)
	}
	return s.cached
}

// EndpointSource supplies the first entry of the configured external wallet
// endpoint list.
type EndpointSource struct {
	endpoints func() []config.Endpoint
	interval  time.Duration

	mu     sync.Mutex
	cached *Remote
}

// NewEndpointSource creates an EndpointSource. endpoints is re-queried on
// every Detect so config edits take effect without a restart.
func NewEndpointSource(endpoints func() []config.Endpoint) *EndpointSource {
	return &EndpointSource{
		endpoints: endpoints,
		interval:  config.HostPollInterval,
	}
}

func (s *EndpointSource) Name() string { return "endpoint-list" }

// Detect returns a provider for the first configured endpoint, or nil when
// the list is empty.
func (s *EndpointSource) Detect() Provider {
	eps := s.endpoints()
	if len(eps) == 0 {
		return nil
	}
	first := eps[0]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil || s.cached.URL() != first.URL {
		name := first.Name
		if name == "" {
			name = "endpoint"
		}
		s.cached = NewRemote(name, first.URL, s.interval)
	}
	return s.cached
}

// StaticSource always returns the same provider. Used by tests and by the
// CLI when a provider has been constructed up front.
type StaticSource struct {
	SourceName string
	Provider   Provider
}

func (s *StaticSource) Name() string {
	if s.SourceName != "" {
		return s.SourceName
	}
	return "static"
}

func (s *StaticSource) Detect() Provider { return s.Provider }
