// Command rakdial negotiates a RakNet offline handshake against a
// Bedrock-style server, walking a matrix of candidate ports and protocol
// versions until one establishes. Flags have RAKDIAL_* environment fallbacks;
// with -listen set it also serves Prometheus metrics on /metrics and a live
// JSON event stream on /events.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"

	"github.com/kelvare/rakdial/client"
	"github.com/kelvare/rakdial/internal/cmdutil"
	"github.com/kelvare/rakdial/observability"
	"github.com/kelvare/rakdial/observability/prom"
	"github.com/kelvare/rakdial/observability/wsfeed"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	host := flag.String("host", cmdutil.EnvString("RAKDIAL_HOST", ""), "Server host or IPv4 address (required)")
	portsFlag := flag.String("ports", cmdutil.EnvString("RAKDIAL_PORTS", ""), "Candidate ports, comma-separated, priority order (default 25565,19132)")
	versionsFlag := flag.String("versions", cmdutil.EnvString("RAKDIAL_VERSIONS", ""), "Candidate protocol versions, comma-separated, newest first (default 11,10,9,8)")
	name := flag.String("name", cmdutil.EnvString("RAKDIAL_NAME", "ExplorerBot"), "Player display name for the placeholder login")
	stepTimeout := flag.Duration("step-timeout", envDuration("RAKDIAL_STEP_TIMEOUT"), "Per-step reply timeout (0 = library default)")
	pingTimeout := flag.Duration("ping-timeout", envDuration("RAKDIAL_PING_TIMEOUT"), "Pong timeout per port (0 = library default)")
	parallel := flag.Int("parallel", 1, "Max concurrent candidate attempts")
	listen := flag.String("listen", cmdutil.EnvString("RAKDIAL_LISTEN", ""), "Serve /metrics and /events on this address (optional)")
	flag.Parse()

	pterm.Info.Println(fmt.Sprintf("rakdial v%s", version))

	if *host == "" {
		pterm.Error.Println("missing -host")
		flag.Usage()
		os.Exit(2)
	}
	ports, err := cmdutil.ParsePortList(*portsFlag)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	versions, err := cmdutil.ParseVersionList(*versionsFlag)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}

	observers := []observability.Observer{consoleObserver{}}
	if *listen != "" {
		reg := prom.NewRegistry()
		feed := wsfeed.New()
		defer feed.Close()
		observers = append(observers, prom.NewObserver(reg), feed)

		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler(reg))
		mux.Handle("/events", feed)
		srv := &http.Server{Addr: *listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				pterm.Warning.Println(fmt.Sprintf("diagnostics server: %v", err))
			}
		}()
		defer srv.Close()
		pterm.Info.Println(fmt.Sprintf("diagnostics on http://%s (/metrics, /events)", *listen))
	}

	opts := []client.ConnectOption{
		client.WithObserver(observability.Tee(observers...)),
		client.WithMaxInFlight(*parallel),
	}
	if *stepTimeout > 0 {
		opts = append(opts, client.WithStepTimeout(*stepTimeout))
	}
	if *pingTimeout > 0 {
		opts = append(opts, client.WithPingTimeout(*pingTimeout))
	}

	conn, err := client.Connect(ctx, client.Config{
		Host:             *host,
		Ports:            ports,
		ProtocolVersions: versions,
		PlayerName:       *name,
	}, opts...)
	if err != nil {
		reportFailure(err)
		os.Exit(1)
	}
	defer conn.Close()

	pterm.Success.Println(fmt.Sprintf("connected to %s (protocol %d, MTU %d)", conn.Server, conn.ProtocolVersion, conn.MTU))
	pterm.Info.Println(fmt.Sprintf("client GUID %016x, server GUID %016x", conn.ClientGUID, conn.ServerGUID))
	for _, pkt := range conn.Drained {
		pterm.Debug.Println(fmt.Sprintf("drained packet id=0x%02x len=%d", pkt[0], len(pkt)))
	}
}

func reportFailure(err error) {
	var ce *client.Error
	if !errors.As(err, &ce) {
		pterm.Error.Println(err.Error())
		return
	}
	switch ce.Code {
	case client.CodeCanceled:
		pterm.Warning.Println("connect canceled")
	case client.CodeExhaustedCandidates:
		pterm.Error.Println("no candidate established a connection:")
		var ex *client.ExhaustedError
		if errors.As(ce.Err, &ex) {
			for _, f := range ex.Failures {
				pterm.Println(fmt.Sprintf("  port %-5d version %-3d %s (%s)", f.Port, f.ProtocolVersion, f.Stage, f.Code))
			}
		}
	default:
		pterm.Error.Println(err.Error())
	}
}

func envDuration(key string) time.Duration {
	d, err := cmdutil.EnvDuration(key, 0)
	if err != nil {
		pterm.Warning.Println(fmt.Sprintf("ignoring %s: %v", key, err))
		return 0
	}
	return d
}
