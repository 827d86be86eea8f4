// Package monitor serves the scan-registration debug surface: sweep stats
// as JSON and a quick go-echarts view of recent sweeps. Debugging only, no
// auth; bind it to localhost.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/banshee-data/odometry.report/internal/monitoring"
	"github.com/banshee-data/odometry.report/internal/sweepdb"
)

// WebServer exposes the monitor endpoints over HTTP.
type WebServer struct {
	addr string
	db   *sweepdb.DB
	mux  *http.ServeMux
}

// NewWebServer creates a monitor server. The sweeps DB may be nil, in which
// case the endpoints report no history.
func NewWebServer(addr string, db *sweepdb.DB) *WebServer {
	ws := &WebServer{addr: addr, db: db, mux: http.NewServeMux()}
	ws.mux.HandleFunc("/api/sweep/stats", ws.handleStats)
	ws.mux.HandleFunc("/debug/charts/sweeps", ws.handleSweepChart)
	return ws
}

// Mux returns the underlying mux so callers can mount extra debug routes
// (tailsql) before starting the server.
func (ws *WebServer) Mux() *http.ServeMux { return ws.mux }

// Start serves until the context is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	srv := &http.Server{Addr: ws.addr, Handler: ws.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	monitoring.Logf("monitor server listening on %s", ws.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// statsResponse is the JSON shape of /api/sweep/stats.
type statsResponse struct {
	Counters map[string]int64   `json:"counters"`
	Sweeps   []sweepdb.SweepRow `json:"sweeps"`
}

func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	limit := 50
	resp := statsResponse{Counters: monitoring.Counters()}
	if ws.db != nil {
		rows, err := ws.db.RecentSweeps(limit)
		if err != nil {
			ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Sweeps = rows
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
