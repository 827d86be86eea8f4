package sweepdb

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/odometry.report/internal/sweep"
	"github.com/banshee-data/odometry.report/internal/testutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "sweeps.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRegistration(id string, stamp float64) *sweep.Registration {
	return &sweep.Registration{
		SweepID: id,
		Stamp:   stamp,
		FrameID: "camera",
		Stats: sweep.SweepStats{
			PointsIn:         28800,
			PointsKept:       28750,
			CornerSharp:      32,
			CornerLessSharp:  300,
			SurfFlat:         384,
			SurfLessFlat:     5200,
			ImuPauses:        2,
			DeskewApplied:    true,
			ProcessingMicros: 1500,
			CurvatureMean:    0.01,
			CurvatureStdDev:  0.2,
		},
	}
}

func TestMigrationsApply(t *testing.T) {
	db := openTestDB(t)
	version, dirty, err := db.MigrateVersion()
	testutil.AssertNoError(t, err)
	if dirty {
		t.Fatal("schema dirty after migration")
	}
	if version == 0 {
		t.Fatal("no migration applied")
	}
}

func TestRecordAndQuerySweeps(t *testing.T) {
	db := openTestDB(t)

	testutil.AssertNoError(t, db.RecordSweep(testRegistration("a", 100.0)))
	testutil.AssertNoError(t, db.RecordSweep(testRegistration("b", 101.0)))
	testutil.AssertNoError(t, db.RecordSweep(testRegistration("c", 102.0)))

	rows, err := db.RecentSweeps(2)
	testutil.AssertNoError(t, err)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].SweepID != "c" || rows[1].SweepID != "b" {
		t.Errorf("rows out of order: %s, %s", rows[0].SweepID, rows[1].SweepID)
	}

	r := rows[0]
	if r.SurfFlat != 384 || r.ImuPauses != 2 || !r.DeskewApplied {
		t.Errorf("row fields wrong: %+v", r)
	}
	if r.CurvatureStdDev != 0.2 {
		t.Errorf("curvature stddev = %v, want 0.2", r.CurvatureStdDev)
	}
}

func TestDuplicateSweepIDRejected(t *testing.T) {
	db := openTestDB(t)
	testutil.AssertNoError(t, db.RecordSweep(testRegistration("dup", 100.0)))
	testutil.AssertError(t, db.RecordSweep(testRegistration("dup", 101.0)))
}

func TestPruneBefore(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		testutil.AssertNoError(t, db.RecordSweep(testRegistration(string(rune('a'+i)), 100.0+float64(i))))
	}
	n, err := db.PruneBefore(102.0)
	testutil.AssertNoError(t, err)
	if n != 2 {
		t.Fatalf("pruned %d rows, want 2", n)
	}
	rows, err := db.RecentSweeps(10)
	testutil.AssertNoError(t, err)
	if len(rows) != 3 {
		t.Fatalf("%d rows remain, want 3", len(rows))
	}
}
