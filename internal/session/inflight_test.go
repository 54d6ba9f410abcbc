package session

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestBeginOp_BlocksDuplicates(t *testing.T) {
	s := New(threeSlides(), nil)

	if !s.BeginOp(OpEdit, t0) {
		t.Fatalf("first BeginOp failed")
	}
	if s.BeginOp(OpEdit, t0.Add(time.Second)) {
		t.Fatalf("duplicate BeginOp allowed")
	}
	// Independent ops do not block each other.
	if !s.BeginOp(OpAnimate, t0) {
		t.Fatalf("unrelated op blocked")
	}

	s.AckOp(OpEdit)
	if s.OpInFlight(OpEdit) {
		t.Fatalf("op still in flight after ack")
	}
	if !s.BeginOp(OpEdit, t0.Add(time.Minute)) {
		t.Fatalf("BeginOp after ack failed")
	}
}

func TestTick_ClearsExpiredOps(t *testing.T) {
	s := New(threeSlides(), nil)
	s.BeginOp(OpEdit, t0)
	s.BeginOp(OpInsertSlide, t0)

	if expired := s.Tick(t0.Add(120 * time.Second)); len(expired) != 0 {
		t.Fatalf("ops expired early: %v", expired)
	}

	// Edit times out after 120s; insert has the longer 180s deadline.
	expired := s.Tick(t0.Add(121 * time.Second))
	if len(expired) != 1 || expired[0] != OpEdit {
		t.Fatalf("expired = %v", expired)
	}
	if s.OpInFlight(OpEdit) {
		t.Fatalf("expired op still in flight")
	}
	if !s.OpInFlight(OpInsertSlide) {
		t.Fatalf("insert cleared before its deadline")
	}

	expired = s.Tick(t0.Add(181 * time.Second))
	if len(expired) != 1 || expired[0] != OpInsertSlide {
		t.Fatalf("expired = %v", expired)
	}
}

func TestReset_DropsInFlightOps(t *testing.T) {
	s := New(threeSlides(), nil)
	s.BeginOp(OpAnimate, t0)
	s.Reset(threeSlides())
	if s.OpInFlight(OpAnimate) {
		t.Fatalf("reset kept in-flight op")
	}
}
