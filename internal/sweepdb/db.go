// Package sweepdb persists per-sweep registration statistics to SQLite.
// The pipeline itself holds no durable state; these rows exist so tuning
// and health can be inspected after the fact.
package sweepdb

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/odometry.report/internal/sweep"
)

// DB wraps the sweeps database.
type DB struct {
	*sql.DB
	path string
}

// NewDB opens (creating if needed) the sweeps database at path and applies
// pending migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	wrapped := &DB{DB: db, path: path}
	if err := wrapped.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return wrapped, nil
}

// SweepRow is one persisted sweep record.
type SweepRow struct {
	SweepID         string
	Stamp           float64
	PointsIn        int
	PointsKept      int
	CornerSharp     int
	CornerLessSharp int
	SurfFlat        int
	SurfLessFlat    int
	ImuPauses       int64
	DeskewApplied   bool
	ProcessingUs    int64
	CurvatureMean   float64
	CurvatureStdDev float64
	CreatedAt       time.Time
}

// RecordSweep inserts one registration's stats.
func (db *DB) RecordSweep(reg *sweep.Registration) error {
	_, err := db.Exec(`
		INSERT INTO sweeps (
			sweep_id, stamp, points_in, points_kept,
			corner_sharp, corner_less_sharp, surf_flat, surf_less_flat,
			imu_pauses, deskew_applied, processing_us,
			curvature_mean, curvature_stddev
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.SweepID, reg.Stamp, reg.Stats.PointsIn, reg.Stats.PointsKept,
		reg.Stats.CornerSharp, reg.Stats.CornerLessSharp,
		reg.Stats.SurfFlat, reg.Stats.SurfLessFlat,
		reg.Stats.ImuPauses, reg.Stats.DeskewApplied, reg.Stats.ProcessingMicros,
		reg.Stats.CurvatureMean, reg.Stats.CurvatureStdDev,
	)
	if err != nil {
		return fmt.Errorf("failed to record sweep %s: %w", reg.SweepID, err)
	}
	return nil
}

// RecentSweeps returns the most recent limit rows, newest first.
func (db *DB) RecentSweeps(limit int) ([]SweepRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT sweep_id, stamp, points_in, points_kept,
		       corner_sharp, corner_less_sharp, surf_flat, surf_less_flat,
		       imu_pauses, deskew_applied, processing_us,
		       curvature_mean, curvature_stddev, created_at
		FROM sweeps ORDER BY stamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SweepRow
	for rows.Next() {
		var r SweepRow
		if err := rows.Scan(
			&r.SweepID, &r.Stamp, &r.PointsIn, &r.PointsKept,
			&r.CornerSharp, &r.CornerLessSharp, &r.SurfFlat, &r.SurfLessFlat,
			&r.ImuPauses, &r.DeskewApplied, &r.ProcessingUs,
			&r.CurvatureMean, &r.CurvatureStdDev, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneBefore deletes rows with stamp older than the cutoff. Returns the
// number of rows removed.
func (db *DB) PruneBefore(stamp float64) (int64, error) {
	res, err := db.Exec(`DELETE FROM sweeps WHERE stamp < ?`, stamp)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
