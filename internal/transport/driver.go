// Package transport implements the pluggable delivery driver (C1): a
// small closed set of transports today (telegram only), selected by a
// factory keyed by transport_type per spec.md §9's guidance against a
// plugin-loading framework.
package transport

import (
	"context"
	"fmt"

	"simple-push-service/internal/store"
)

// Driver delivers one message to one external chat. Implementations must
// be stateless and safe for concurrent use by every worker goroutine.
type Driver interface {
	Push(ctx context.Context, chatID, title, body string) error
}

// Factory resolves a Driver by transport_type. Returns an error for any
// type outside the closed set, which the worker pool (C5) treats as a
// permanent skip rather than a retry.
type Factory struct {
	drivers map[store.TransportType]Driver
}

func NewFactory() *Factory {
	return &Factory{drivers: make(map[store.TransportType]Driver)}
}

func (f *Factory) Register(t store.TransportType, d Driver) {
	f.drivers[t] = d
}

var ErrUnknownTransportType = fmt.Errorf("unknown transport type")

func (f *Factory) Resolve(t store.TransportType) (Driver, error) {
	d, ok := f.drivers[t]
	if !ok {
		return nil, ErrUnknownTransportType
	}
	return d, nil
}
