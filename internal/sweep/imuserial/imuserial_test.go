package imuserial

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/banshee-data/odometry.report/internal/testutil"
)

func TestParseLine(t *testing.T) {
	s, ok, err := ParseLine("100.5,1,0,0,0,0.1,0.2,9.81")
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("valid line not parsed")
	}
	testutil.AssertClose(t, "time", s.Time, 100.5, 0)
	testutil.AssertClose(t, "qw", s.Orientation.Real, 1, 0)
	testutil.AssertVec3Close(t, "accel", s.Accel.X, s.Accel.Y, s.Accel.Z, 0.1, 0.2, 9.81, 0)
}

func TestParseLineSkipsBlanksAndComments(t *testing.T) {
	for _, line := range []string{"", "   ", "# heading", "#1,2,3"} {
		_, ok, err := ParseLine(line)
		testutil.AssertNoError(t, err)
		if ok {
			t.Errorf("line %q should be skipped", line)
		}
	}
}

func TestParseLineErrors(t *testing.T) {
	if _, _, err := ParseLine("1,2,3"); err == nil {
		t.Error("short line should error")
	}
	if _, _, err := ParseLine("a,1,0,0,0,0,0,0"); err == nil {
		t.Error("non-numeric field should error")
	}
}

func TestFormatLineRoundTrip(t *testing.T) {
	in := "42.125000,0.707106781,0.000000000,0.707106781,0.000000000,0.100000,-0.200000,9.810000"
	s, ok, err := ParseLine(in)
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("parse failed")
	}
	s2, ok, err := ParseLine(FormatLine(s))
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("reparse failed")
	}
	if math.Abs(s2.Time-s.Time) > 1e-6 || math.Abs(s2.Orientation.Imag-s.Orientation.Imag) > 1e-9 {
		t.Errorf("round trip drifted: %+v vs %+v", s2, s)
	}
}

func TestReaderMonitor(t *testing.T) {
	lines := strings.Join([]string{
		"1.00,1,0,0,0,0,0,9.81",
		"garbage line",
		"# comment",
		"1.01,1,0,0,0,0,0,9.81",
	}, "\n") + "\n"

	var got []Sample
	r := NewReader(NewMockPort([]byte(lines)), func(s Sample) { got = append(got, s) })
	err := r.Monitor(context.Background())
	testutil.AssertNoError(t, err)

	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
	if got[0].Time != 1.00 || got[1].Time != 1.01 {
		t.Errorf("sample times = %v, %v", got[0].Time, got[1].Time)
	}
	if r.ParseErrors() != 1 {
		t.Errorf("parse errors = %d, want 1", r.ParseErrors())
	}
}

func TestUDPListenerHandleDatagram(t *testing.T) {
	var got []Sample
	l := NewUDPListener("127.0.0.1:0", func(s Sample) { got = append(got, s) })
	l.handleDatagram("1.00,1,0,0,0,0,0,9.81\n1.01,1,0,0,0,0,0,9.81\nnot a line\n")

	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
}
