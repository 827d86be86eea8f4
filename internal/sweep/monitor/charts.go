package monitor

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleSweepChart renders a quick line chart (HTML) of recent sweeps'
// feature counts and IMU pauses using go-echarts. Query params:
//   - limit (optional; default 200, max 2000)
func (ws *WebServer) handleSweepChart(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no sweeps database configured")
		return
	}

	limit := 200
	if lim := r.URL.Query().Get("limit"); lim != "" {
		if v, err := strconv.Atoi(lim); err == nil && v > 0 && v <= 2000 {
			limit = v
		}
	}

	rows, err := ws.db.RecentSweeps(limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(rows) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no sweeps recorded yet")
		return
	}

	// RecentSweeps returns newest first; plot oldest → newest.
	labels := make([]string, 0, len(rows))
	sharp := make([]opts.LineData, 0, len(rows))
	flat := make([]opts.LineData, 0, len(rows))
	lessFlat := make([]opts.LineData, 0, len(rows))
	pauses := make([]opts.LineData, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		labels = append(labels, fmt.Sprintf("%.1f", row.Stamp))
		sharp = append(sharp, opts.LineData{Value: row.CornerSharp})
		flat = append(flat, opts.LineData{Value: row.SurfFlat})
		lessFlat = append(lessFlat, opts.LineData{Value: row.SurfLessFlat})
		pauses = append(pauses, opts.LineData{Value: row.ImuPauses})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Scan registration: recent sweeps",
			Subtitle: fmt.Sprintf("last %d sweeps", len(rows)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(labels).
		AddSeries("corner sharp", sharp).
		AddSeries("surf flat", flat).
		AddSeries("surf less flat", lessFlat).
		AddSeries("imu pauses", pauses)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
