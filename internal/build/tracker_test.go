package build

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTracker_Lifecycle(t *testing.T) {
	tr := NewTracker()
	if tr.Status != StatusIdle {
		t.Fatalf("initial status = %q", tr.Status)
	}

	tr.Start(KindAll, 10, 0, "build-1")
	if !tr.Active || tr.Status != StatusBuilding {
		t.Fatalf("after Start: active=%v status=%q", tr.Active, tr.Status)
	}

	tr.Progress(t0, 3, 10, 3, StatusBuilding)
	if tr.CurrentSlide != 3 || tr.BuiltCount != 3 {
		t.Fatalf("progress not applied: %+v", tr)
	}

	tr.Complete(t0, 10, 0, false)
	if tr.Status != StatusComplete {
		t.Fatalf("status = %q", tr.Status)
	}
	if tr.CompletedAt == nil || !tr.CompletedAt.Equal(t0) {
		t.Fatalf("CompletedAt = %v", tr.CompletedAt)
	}
}

func TestTracker_ProgressIgnoredWhenNotBuilding(t *testing.T) {
	tr := NewTracker()
	tr.Progress(t0, 5, 10, 5, StatusBuilding)
	if tr.CurrentSlide != 0 {
		t.Fatalf("progress applied while idle: %+v", tr)
	}
}

func TestTracker_AutoDismissOnlyAfterCleanComplete(t *testing.T) {
	tr := NewTracker()
	tr.Start(KindAll, 5, 0, "build-1")
	tr.Complete(t0, 5, 0, false)

	if tr.Tick(t0.Add(3 * time.Second)) {
		t.Fatalf("dismissed early")
	}
	if !tr.Tick(t0.Add(4 * time.Second)) {
		t.Fatalf("not dismissed at deadline")
	}
	if tr.Status != StatusIdle || tr.Active {
		t.Fatalf("not reset after auto-dismiss: %+v", tr)
	}
}

func TestTracker_ErrorStateSticks(t *testing.T) {
	tr := NewTracker()
	tr.Start(KindResume, 5, 3, "build-2")
	tr.Complete(t0, 4, 1, false)
	if tr.Status != StatusError {
		t.Fatalf("status = %q", tr.Status)
	}
	if tr.Tick(t0.Add(time.Hour)) {
		t.Fatalf("error state auto-dismissed")
	}
	tr.Dismiss()
	if tr.Status != StatusIdle {
		t.Fatalf("Dismiss did not reset: %q", tr.Status)
	}
}

func TestTracker_CancelledBeatsError(t *testing.T) {
	tr := NewTracker()
	tr.Start(KindOne, 1, 1, "build-3")
	tr.Complete(t0, 0, 2, true)
	if tr.Status != StatusCancelled {
		t.Fatalf("status = %q, want cancelled", tr.Status)
	}
	if tr.Tick(t0.Add(time.Hour)) {
		t.Fatalf("cancelled state auto-dismissed")
	}
}

func TestTracker_TerminalSubStatusPromotes(t *testing.T) {
	tr := NewTracker()
	tr.Start(KindAll, 3, 0, "build-4")
	tr.Progress(t0, 2, 3, 2, StatusError)
	if tr.Status != StatusError {
		t.Fatalf("terminal sub-status not promoted: %q", tr.Status)
	}
	if tr.CompletedAt == nil || !tr.CompletedAt.Equal(t0) {
		t.Fatalf("promotion did not stamp CompletedAt: %v", tr.CompletedAt)
	}
	if tr.Tick(t0.Add(time.Hour)) {
		t.Fatalf("promoted error auto-dismissed")
	}
}

func TestTracker_PromotedCompleteAutoDismisses(t *testing.T) {
	tr := NewTracker()
	tr.Start(KindAll, 3, 0, "build-8")
	tr.Progress(t0, 3, 3, 3, StatusComplete)
	if tr.Status != StatusComplete {
		t.Fatalf("status = %q", tr.Status)
	}
	if tr.CompletedAt == nil {
		t.Fatal("promotion did not stamp CompletedAt")
	}
	if tr.Tick(t0.Add(3 * time.Second)) {
		t.Fatalf("dismissed early")
	}
	if !tr.Tick(t0.Add(4 * time.Second)) {
		t.Fatalf("promoted complete never auto-dismissed")
	}
}

func TestTracker_StartResetsCounters(t *testing.T) {
	tr := NewTracker()
	tr.Start(KindAll, 10, 0, "build-5")
	tr.Progress(t0, 7, 10, 7, StatusBuilding)
	tr.Complete(t0, 10, 0, false)

	tr.Start(KindAll, 4, 0, "build-6")
	if tr.BuiltCount != 0 || tr.CurrentSlide != 0 || tr.CompletedAt != nil {
		t.Fatalf("counters not reset: %+v", tr)
	}
	if tr.BuildID != "build-6" || tr.TotalSlides != 4 {
		t.Fatalf("new build not applied: %+v", tr)
	}
}

func TestTracker_DismissIgnoredWhileBuilding(t *testing.T) {
	tr := NewTracker()
	tr.Start(KindAll, 2, 0, "build-7")
	tr.Dismiss()
	if tr.Status != StatusBuilding {
		t.Fatalf("Dismiss interrupted a running build: %q", tr.Status)
	}
}
