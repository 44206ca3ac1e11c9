// Command rakping probes RakNet server liveness with unconnected pings.
//
// Sends one unconnected ping per candidate port and prints the advertised
// server status. Useful to tell "server filtered us" apart from "server is
// down" before attempting a full handshake.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"

	"github.com/kelvare/rakdial/client"
	"github.com/kelvare/rakdial/discovery"
	"github.com/kelvare/rakdial/internal/cmdutil"
	"github.com/kelvare/rakdial/internal/defaults"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	host := flag.String("host", cmdutil.EnvString("RAKDIAL_HOST", ""), "Server host or IPv4 address (required)")
	portsFlag := flag.String("ports", cmdutil.EnvString("RAKDIAL_PORTS", ""), "Candidate ports, comma-separated (default 25565,19132)")
	timeout := flag.Duration("timeout", defaults.PingTimeout, "Pong timeout per port")
	flag.Parse()

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
	if len(ports) == 0 {
		ports = defaults.Ports()
	}

	addr, err := client.ResolveIPv4(ctx, *host)
	if err != nil {
		pterm.Error.Println(fmt.Sprintf("resolve %s: %v", *host, err))
		os.Exit(1)
	}

	anyOnline := false
	for _, port := range ports {
		online, status, err := discovery.Ping(ctx, netip.AddrPortFrom(addr, port), discovery.Options{Timeout: *timeout})
		switch {
		case online:
			anyOnline = true
			pterm.Success.Println(fmt.Sprintf("port %d online (rtt %v, server GUID %016x)", port, status.RTT.Round(time.Millisecond), status.ServerGUID))
			printStatus(status)
		case err != nil:
			pterm.Warning.Println(fmt.Sprintf("port %d: %v", port, err))
		default:
			pterm.Warning.Println(fmt.Sprintf("port %d: no response", port))
		}
	}
	if !anyOnline {
		os.Exit(1)
	}
}

func printStatus(s *discovery.Status) {
	if s.MOTD != "" {
		pterm.Info.Println(fmt.Sprintf("  motd: %s", s.MOTD))
	}
	if s.Version != "" {
		pterm.Info.Println(fmt.Sprintf("  version: %s (protocol %d)", s.Version, s.Protocol))
	}
	if s.MaxPlayers > 0 {
		pterm.Info.Println(fmt.Sprintf("  players: %d/%d", s.Players, s.MaxPlayers))
	}
	if s.Text == "" && len(s.Raw) > 0 {
		pterm.Info.Println(fmt.Sprintf("  raw status: %x", s.Raw))
	}
}
