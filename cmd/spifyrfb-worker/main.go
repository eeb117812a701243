// Command spifyrfb-worker runs one RFB server bound to one desktop
// session: it listens for RFB viewers on --ip, optionally bridges the
// same stream over WebSocket (--ws) or WebSocket-over-TLS (--wss), and
// reports its addresses to a spifyrfbd daemon over --spify-daemon.
//
// Exit codes follow spec.md §6 and §10: 0 on a clean shutdown (including
// an orderly daemon-initiated disconnect), non-zero on a listener bind
// failure or any other fatal startup error.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/golang/glog"

	"github.com/candiedoperation/spifyrfb/internal/config"
	"github.com/candiedoperation/spifyrfb/internal/display"
	"github.com/candiedoperation/spifyrfb/internal/display/simulator"
	"github.com/candiedoperation/spifyrfb/internal/ipc"
	"github.com/candiedoperation/spifyrfb/internal/rfb"
	"github.com/candiedoperation/spifyrfb/internal/rfbauth"
	"github.com/candiedoperation/spifyrfb/internal/statusapi"
	"github.com/candiedoperation/spifyrfb/internal/wsbridge"
)

func main() {
	var (
		ipAddr         = flag.String("ip", "", "RFB listen address, e.g. 0.0.0.0:5900 (required)")
		wsAddr         = flag.String("ws", "", "WebSocket bridge listen address (mutually exclusive with --wss)")
		wssAddr        = flag.String("wss", "", "WebSocket-over-TLS bridge listen address (mutually exclusive with --ws)")
		vncAuth        = flag.String("vnc-auth", "", "VNC-DES password; first 8 bytes are used. Empty disables authentication")
		daemonAddr     = flag.String("spify-daemon", "", "daemon IPC address this worker reports to, e.g. 127.0.0.1:39281")
		displayBackend = flag.String("display", "simulated", "display.Provider backend (only \"simulated\" is built into this binary)")
		configPath     = flag.String("config", "spifyrfb.yaml", "ambient runtime-tuning overlay path")
		pairingPath    = flag.String("pairing-config", "config.json", "pairing config path for the status API's pairkey gate")
		certPath       = flag.String("cert", "ssl/cert.pem", "TLS certificate chain, used only with --wss")
		keyPath        = flag.String("key", "ssl/key.pem", "TLS private key (PKCS#1 or PKCS#8), used only with --wss")
	)
	flag.Parse()
	defer glog.Flush()

	if err := run(*ipAddr, *wsAddr, *wssAddr, *vncAuth, *daemonAddr, *displayBackend, *configPath, *pairingPath, *certPath, *keyPath); err != nil {
		glog.Errorf("spifyrfb-worker: %v", err)
		os.Exit(1)
	}
}

func run(ipAddr, wsAddr, wssAddr, vncAuth, daemonAddr, displayBackend, configPath, pairingPath, certPath, keyPath string) error {
	if ipAddr == "" {
		return fmt.Errorf("--ip is required")
	}
	if wsAddr != "" && wssAddr != "" {
		return fmt.Errorf("--ws and --wss are mutually exclusive")
	}

	rt, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	glog.V(1).Infof("spifyrfb-worker: runtime config: %+v", rt)

	pairing, err := rfbauth.LoadPairing(pairingPath)
	if err != nil {
		return fmt.Errorf("load pairing config: %w", err)
	}

	var provider display.Provider
	switch displayBackend {
	case "simulated":
		provider = simulator.New(1920, 1080)
	default:
		return fmt.Errorf("unknown --display backend %q (only \"simulated\" is built in; platform backends are wired externally)", displayBackend)
	}
	defer provider.Close()

	rfbListener, err := net.Listen("tcp", ipAddr)
	if err != nil {
		return fmt.Errorf("bind rfb listener on %s: %w", ipAddr, err)
	}
	glog.Infof("spifyrfb-worker: rfb listening on %s", rfbListener.Addr())

	rfbSrv := rfb.NewServer(&rfb.Config{Password: vncAuth, Display: provider})
	go func() {
		if err := rfbSrv.Serve(rfbListener); err != nil {
			glog.Errorf("spifyrfb-worker: rfb server stopped: %v", err)
		}
	}()

	var client *ipc.WorkerClient
	if daemonAddr != "" {
		pid := uint32(os.Getpid())
		client, err = ipc.Dial(daemonAddr, pid, rfbListener.Addr().String())
		if err != nil {
			return fmt.Errorf("dial daemon at %s: %w", daemonAddr, err)
		}
		glog.Infof("spifyrfb-worker: announced pid %d to daemon at %s", pid, daemonAddr)
	}

	sessions := ipc.NewSessionMap()
	statusCfg := statusapi.Config{
		Pairing:      pairing,
		Sessions:     sessions,
		Display:      provider,
		Orchestrator: statusapi.LoggingOrchestrator{},
		Hostname:     hostnameOrUnknown(),
	}

	var bridgeAddr, bridgeScheme string
	var tlsConfig *tls.Config
	switch {
	case wssAddr != "":
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return fmt.Errorf("load tls keypair: %w", err)
		}
		tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
		bridgeAddr, bridgeScheme = wssAddr, "wss"
	case wsAddr != "":
		bridgeAddr, bridgeScheme = wsAddr, "ws"
	}

	if bridgeAddr != "" {
		wsListener, err := net.Listen("tcp", bridgeAddr)
		if err != nil {
			return fmt.Errorf("bind websocket bridge on %s: %w", bridgeAddr, err)
		}
		glog.Infof("spifyrfb-worker: %s bridge listening on %s", bridgeScheme, wsListener.Addr())

		bridge := wsbridge.New(wsbridge.Config{
			RFBAddr:  rfbListener.Addr().String(),
			TLS:      tlsConfig,
			Fallback: statusapi.NewMux(statusCfg),
		})
		go func() {
			if err := bridge.Serve(wsListener); err != nil {
				glog.Errorf("spifyrfb-worker: websocket bridge stopped: %v", err)
			}
		}()

		if client != nil {
			client.NotifyIPUpdate(uint32(os.Getpid()), bridgeScheme, wsListener.Addr().String())
		}
	}

	if client == nil {
		select {}
	}

	stop := make(chan struct{})
	err = client.Run(stop)
	if ipc.IsDaemonDisconnect(err) {
		glog.Infof("spifyrfb-worker: daemon disconnected, exiting")
		return nil
	}
	return err
}

func hostnameOrUnknown() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
