package main

import (
	"errors"
	"testing"

	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
)

func TestConceptMissing(t *testing.T) {
	if !conceptMissing(apierr.NotFound("concept not found")) {
		t.Fatal("not_found lookup should read as missing")
	}
	if conceptMissing(apierr.Wrap(apierr.KindStoreUnavailable, errors.New("connection refused"), "load concept")) {
		t.Fatal("store failure must not read as missing")
	}
	if conceptMissing(nil) {
		t.Fatal("nil error is not a miss")
	}
}
