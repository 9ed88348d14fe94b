package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles the host backends the coordinator is driven by.
type Provider struct {
	Events    EventSource
	Announcer Announcer
}

// ErrUnsupported is returned when no host backend is linked for this OS.
var ErrUnsupported = fmt.Errorf("no accessibility host backend for %s/%s; use a scripted tree instead", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by host backend packages via init().
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}

// HostSupported reports whether a host backend registered itself.
func HostSupported() bool {
	return NewProviderFunc != nil
}
