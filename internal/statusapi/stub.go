package statusapi

import "github.com/golang/glog"

// LoggingOrchestrator is a no-op OrchestratorChannel that only logs the
// requested action. Wiring an OS-level implementation (Windows service
// lifecycle control, child-process spawning) is explicitly out of
// scope; this stub exists so /api/power/* routes and their tests have
// something concrete to call.
type LoggingOrchestrator struct{}

func (LoggingOrchestrator) Lock() error {
	glog.Infof("statusapi: lock requested (no-op stub)")
	return nil
}

func (LoggingOrchestrator) Logoff() error {
	glog.Infof("statusapi: logoff requested (no-op stub)")
	return nil
}

func (LoggingOrchestrator) Shutdown() error {
	glog.Infof("statusapi: shutdown requested (no-op stub)")
	return nil
}

func (LoggingOrchestrator) Reboot() error {
	glog.Infof("statusapi: reboot requested (no-op stub)")
	return nil
}

var _ OrchestratorChannel = LoggingOrchestrator{}
