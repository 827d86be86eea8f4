package monitor

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/odometry.report/internal/monitoring"
	"github.com/banshee-data/odometry.report/internal/sweep"
	"github.com/banshee-data/odometry.report/internal/sweepdb"
	"github.com/banshee-data/odometry.report/internal/testutil"
)

func newTestServer(t *testing.T) (*WebServer, *sweepdb.DB) {
	t.Helper()
	db, err := sweepdb.NewDB(filepath.Join(t.TempDir(), "sweeps.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWebServer("127.0.0.1:0", db), db
}

func recordSweeps(t *testing.T, db *sweepdb.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		reg := &sweep.Registration{
			SweepID: string(rune('a' + i)),
			Stamp:   100.0 + float64(i)*0.1,
			Stats: sweep.SweepStats{
				CornerSharp: 30 + i,
				SurfFlat:    384,
			},
		}
		testutil.AssertNoError(t, db.RecordSweep(reg))
	}
}

func TestStatsEndpoint(t *testing.T) {
	monitoring.ResetCounters()
	monitoring.AddCounter(sweep.CounterImuPaused, 3)

	ws, db := newTestServer(t)
	recordSweeps(t, db, 5)

	rec := httptest.NewRecorder()
	ws.mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/sweep/stats", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Counters map[string]int64 `json:"counters"`
		Sweeps   []sweepdb.SweepRow
	}
	testutil.AssertNoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if resp.Counters[sweep.CounterImuPaused] != 3 {
		t.Errorf("imu pause counter = %d, want 3", resp.Counters[sweep.CounterImuPaused])
	}
	if len(resp.Sweeps) != 5 {
		t.Errorf("got %d sweeps, want 5", len(resp.Sweeps))
	}
}

func TestSweepChartRenders(t *testing.T) {
	ws, db := newTestServer(t)
	recordSweeps(t, db, 3)

	rec := httptest.NewRecorder()
	ws.mux.ServeHTTP(rec, httptest.NewRequest("GET", "/debug/charts/sweeps", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "echarts") {
		t.Error("chart response does not embed echarts")
	}
	if !strings.Contains(body, "corner sharp") {
		t.Error("chart missing corner sharp series")
	}
}

func TestSweepChartEmptyDB(t *testing.T) {
	ws, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	ws.mux.ServeHTTP(rec, httptest.NewRequest("GET", "/debug/charts/sweeps", nil))
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404 with no sweeps", rec.Code)
	}
}
