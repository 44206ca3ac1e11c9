package client

import (
	"fmt"
	"time"

	"github.com/kelvare/rakdial/internal/defaults"
	"github.com/kelvare/rakdial/observability"
)

// ConnectOption configures timeouts, probing, and diagnostics for Connect.
//
// Omit an option to use the library default.
type ConnectOption func(*connectOptions) error

type connectOptions struct {
	pingTimeout  time.Duration
	stepTimeout  time.Duration
	mtuProbeSize int
	drainCount   int
	maxInFlight  int
	observer     observability.Observer
}

func defaultConnectOptions() connectOptions {
	return connectOptions{
		pingTimeout:  defaults.PingTimeout,
		stepTimeout:  defaults.StepTimeout,
		mtuProbeSize: defaults.MTUProbeSize,
		drainCount:   defaults.DrainCount,
		maxInFlight:  1,
		observer:     observability.NoopObserver,
	}
}

func applyConnectOptions(opts []ConnectOption) (connectOptions, error) {
	cfg := defaultConnectOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return connectOptions{}, err
		}
	}
	return cfg, nil
}

// WithPingTimeout sets the wait for an unconnected pong per port.
func WithPingTimeout(d time.Duration) ConnectOption {
	return func(cfg *connectOptions) error {
		if d <= 0 {
			return fmt.Errorf("ping timeout must be > 0")
		}
		cfg.pingTimeout = d
		return nil
	}
}

// WithStepTimeout sets the wait for each open-connection reply.
func WithStepTimeout(d time.Duration) ConnectOption {
	return func(cfg *connectOptions) error {
		if d <= 0 {
			return fmt.Errorf("step timeout must be > 0")
		}
		cfg.stepTimeout = d
		return nil
	}
}

// WithMTUProbeSize sets the padded size of the first open-connection request.
func WithMTUProbeSize(n int) ConnectOption {
	return func(cfg *connectOptions) error {
		if n <= 0 {
			return fmt.Errorf("mtu probe size must be > 0")
		}
		cfg.mtuProbeSize = n
		return nil
	}
}

// WithDrainCount bounds the post-handshake reads on the winning candidate.
// A negative value disables the drain.
func WithDrainCount(n int) ConnectOption {
	return func(cfg *connectOptions) error {
		cfg.drainCount = n
		return nil
	}
}

// WithMaxInFlight caps concurrent candidate attempts. The default of 1 keeps
// the search strictly sequential; higher values fan out across the
// port x version matrix and the first success cancels the rest.
func WithMaxInFlight(n int) ConnectOption {
	return func(cfg *connectOptions) error {
		if n <= 0 {
			return fmt.Errorf("max in-flight must be > 0")
		}
		cfg.maxInFlight = n
		return nil
	}
}

// WithObserver plugs in a diagnostics observer for ping, step, and final
// result events.
func WithObserver(obs observability.Observer) ConnectOption {
	return func(cfg *connectOptions) error {
		if obs == nil {
			obs = observability.NoopObserver
		}
		cfg.observer = obs
		return nil
	}
}
