// Package discovery advertises the device's control port on the local
// network via mDNS/DNS-SD, so a controller app can find a LightwaveOS
// device without the user typing in an IP address.
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"

	"github.com/lightwaveos/core/internal/logx"
)

// ServiceType is the DNS-SD service type this device announces.
const ServiceType = "_lightwaveos._tcp"

// Advertiser owns the lifetime of one DNS-SD announcement. It is tied
// to the orchestrator's lifecycle: Start on bring-up, Stop on shutdown.
type Advertiser struct {
	name string
	port int
	log  logx.Logger

	cancel context.CancelFunc
}

// New returns an Advertiser for the given service name and control
// port. name is typically derived from the device's hostname.
func New(name string, port int, log logx.Logger) *Advertiser {
	return &Advertiser{name: name, port: port, log: log} //nolint:exhaustruct
}

// Start creates the DNS-SD service and responder and begins responding
// to queries in a background goroutine. It returns an error if the
// service or responder could not be created; responder errors observed
// after Start returns are only logged, since by then the caller has
// already moved on to steady-state operation.
func (a *Advertiser) Start(ctx context.Context) error {
	cfg := dnssd.Config{Name: a.name, Type: ServiceType, Port: a.port} //nolint:exhaustruct

	svc, err := dnssd.NewService(cfg)
	if err != nil {
		return fmt.Errorf("discovery: create service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return fmt.Errorf("discovery: create responder: %w", err)
	}

	if _, err := responder.Add(svc); err != nil {
		return fmt.Errorf("discovery: add service: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.log != nil {
		a.log.Info("discovery: advertising", "name", a.name, "type", ServiceType, "port", a.port)
	}

	go func() {
		if err := responder.Respond(runCtx); err != nil && runCtx.Err() == nil {
			if a.log != nil {
				a.log.Warn("discovery: responder exited", "err", err)
			}
		}
	}()

	return nil
}

// Stop cancels the responder's run context, withdrawing the
// announcement. It is safe to call even if Start was never called or
// failed.
func (a *Advertiser) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}
