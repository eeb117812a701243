package statusapi

import "net/http"

// powerHandler adapts one OrchestratorChannel method into an http.Handler,
// used for the /api/power/{lock,logoff,shutdown,reboot} routes named in
// spec.md §1/§4.I but absent from the original's route table
// (daemons/src/webapi/mod.rs only ever defined / and /api/status,sessions).
func powerHandler(cfg Config, action func(OrchestratorChannel) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Orchestrator == nil {
			http.Error(w, "no orchestrator configured", http.StatusServiceUnavailable)
			return
		}
		if err := action(cfg.Orchestrator); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
