// Command spifyrfbd is the supervising daemon's IPC and status-API
// shell: it accepts worker announcements over the IPC protocol in
// internal/ipc and serves internal/statusapi's read-only HTTP surface
// from the resulting session map. It does not spawn worker processes or
// enumerate WTS sessions itself; that belongs to the OrchestratorChannel
// boundary spec.md §1 places outside this core.
package main

import (
	"flag"
	"net"
	"net/http"
	"os"

	"github.com/golang/glog"

	"github.com/candiedoperation/spifyrfb/internal/ipc"
	"github.com/candiedoperation/spifyrfb/internal/rfbauth"
	"github.com/candiedoperation/spifyrfb/internal/statusapi"
)

func main() {
	var (
		ipcAddr     = flag.String("ipc", "127.0.0.1:39281", "daemon IPC listen address workers dial")
		httpAddr    = flag.String("http", "127.0.0.1:8080", "status API listen address")
		pairingPath = flag.String("pairing-config", "config.json", "pairing config path for the status API's pairkey gate")
	)
	flag.Parse()
	defer glog.Flush()

	if err := run(*ipcAddr, *httpAddr, *pairingPath); err != nil {
		glog.Errorf("spifyrfbd: %v", err)
		os.Exit(1)
	}
}

func run(ipcAddr, httpAddr, pairingPath string) error {
	pairing, err := rfbauth.LoadPairing(pairingPath)
	if err != nil {
		return err
	}

	daemon := ipc.NewDaemon()

	ipcListener, err := net.Listen("tcp", ipcAddr)
	if err != nil {
		return err
	}
	glog.Infof("spifyrfbd: ipc listening on %s", ipcListener.Addr())

	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return err
	}
	glog.Infof("spifyrfbd: status api listening on %s", httpListener.Addr())

	statusCfg := statusapi.Config{
		Pairing:      pairing,
		Sessions:     daemon.Sessions,
		Orchestrator: statusapi.LoggingOrchestrator{},
		Hostname:     hostnameOrUnknown(),
	}

	errCh := make(chan error, 2)
	go func() { errCh <- daemon.Serve(ipcListener) }()
	go func() { errCh <- http.Serve(httpListener, statusapi.NewMux(statusCfg)) }()
	return <-errCh
}

func hostnameOrUnknown() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
