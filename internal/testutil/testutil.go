// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertClose checks that got is within tol of want.
func AssertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

// AssertVec3Close checks each component of a 3-vector against want.
func AssertVec3Close(t *testing.T, name string, gotX, gotY, gotZ, wantX, wantY, wantZ, tol float64) {
	t.Helper()
	AssertClose(t, name+".x", gotX, wantX, tol)
	AssertClose(t, name+".y", gotY, wantY, tol)
	AssertClose(t, name+".z", gotZ, wantZ, tol)
}
