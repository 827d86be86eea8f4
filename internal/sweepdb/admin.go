package sweepdb

import (
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/banshee-data/odometry.report/internal/monitoring"
)

// AttachAdminRoutes mounts a read-only tailSQL console for the sweeps
// database under /debug/tailsql/ on the given mux. Intended for the
// localhost monitor server only.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return err
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Sweeps DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())
	monitoring.Logf("tailsql console mounted at /debug/tailsql/")
	return nil
}
