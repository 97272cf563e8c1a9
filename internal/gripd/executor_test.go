package gripd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

func newTestExecutor() (*RunStore, *RunExecutor) {
	store := NewRunStore()
	return store, NewRunExecutor(store, config.DefaultTable())
}

// waitTerminal polls until the run reaches a terminal state
func waitTerminal(t *testing.T, store *RunStore, runID string) *RunRecord {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(runID)
		if ok && rec.Status.IsTerminal() {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s did not reach a terminal state", runID)
	return nil
}

func TestExecutorSimulateRun(t *testing.T) {
	store, exec := newTestExecutor()
	store.Create("run-1", &RunInput{
		Mode:     ModeSimulate,
		Detected: "Intestine",
		TargetN:  1.5,
	})

	rec, err := exec.Start("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != models.RunStatusRunning {
		t.Fatalf("expected running, got %s", rec.Status)
	}

	final := waitTerminal(t, store, "run-1")
	if final.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed, got %s (error %q)", final.Status, final.Error)
	}
	if final.Result == nil || final.Result.Run == nil {
		t.Fatalf("expected a result with a run")
	}
	if final.Result.Tissue != "Intestine" {
		t.Fatalf("expected Intestine in effect, got %s", final.Result.Tissue)
	}
	if len(final.Result.Run.Series) == 0 {
		t.Fatalf("expected non-empty series")
	}
	if final.Result.Log == "" {
		t.Fatalf("expected a decision log")
	}
}

func TestExecutorOverrideUsesSurgeonProfile(t *testing.T) {
	store, exec := newTestExecutor()
	store.Create("run-1", &RunInput{
		Detected: "Intestine",
		Override: "Liver",
		TargetN:  3.0,
	})

	if _, err := exec.Start("run-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	final := waitTerminal(t, store, "run-1")
	if final.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed, got %s (error %q)", final.Status, final.Error)
	}

	if final.Result.Tissue != "Liver" {
		t.Fatalf("expected Liver in effect, got %s", final.Result.Tissue)
	}
	// Effective gains are Liver's defaults, not Intestine's
	liver := config.DefaultTable().LookupOrUnknown("Liver")
	if final.Result.InitialGains != liver.DefaultGains {
		t.Fatalf("expected Liver default gains, got %+v", final.Result.InitialGains)
	}
	if !strings.Contains(final.Result.Log, "detected Intestine") ||
		!strings.Contains(final.Result.Log, "selected Liver") {
		t.Fatalf("decision log should name both tissues:\n%s", final.Result.Log)
	}
}

func TestExecutorTuneRun(t *testing.T) {
	store, exec := newTestExecutor()
	store.Create("run-1", &RunInput{
		Mode:     ModeTune,
		Detected: "Intestine",
		TargetN:  1.5,
		Budget:   31,
		Workers:  4,
	})

	if _, err := exec.Start("run-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	final := waitTerminal(t, store, "run-1")
	if final.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed, got %s (error %q)", final.Status, final.Error)
	}

	tuned := final.Result.Tuning
	if tuned == nil {
		t.Fatalf("expected tuning result")
	}
	if tuned.Evaluated != 31 {
		t.Fatalf("expected 31 evaluated candidates, got %d", tuned.Evaluated)
	}
	if !tuned.SafeFound {
		t.Fatalf("expected a safe candidate for Intestine at 1.5N")
	}
	if final.Result.Run.Gains != tuned.BestGains {
		t.Fatalf("final run should use the tuned gains")
	}
	if !strings.Contains(final.Result.Log, "Tuned gains") {
		t.Fatalf("decision log should mention tuned gains:\n%s", final.Result.Log)
	}
}

func TestExecutorInvalidInputFailsRun(t *testing.T) {
	store, exec := newTestExecutor()
	store.Create("run-1", &RunInput{
		Detected: "Intestine",
		TargetN:  1.5,
		Gains:    &models.PIDGains{Kp: -1},
	})

	if _, err := exec.Start("run-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	final := waitTerminal(t, store, "run-1")
	if final.Status != models.RunStatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.Error == "" {
		t.Fatalf("expected a validation error message")
	}
	if final.Result != nil {
		t.Fatalf("expected no partial result")
	}
}

func TestExecutorUnknownModeFailsRun(t *testing.T) {
	store, exec := newTestExecutor()
	store.Create("run-1", &RunInput{Mode: "optimize", TargetN: 1.0})

	if _, err := exec.Start("run-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	final := waitTerminal(t, store, "run-1")
	if final.Status != models.RunStatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
}

func TestExecutorStartErrors(t *testing.T) {
	store, exec := newTestExecutor()

	if _, err := exec.Start(""); !errors.Is(err, ErrRunIDMissing) {
		t.Fatalf("expected ErrRunIDMissing, got %v", err)
	}
	if _, err := exec.Start("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}

	store.Create("run-1", &RunInput{Detected: "Intestine", TargetN: 1.0})
	if _, err := exec.Start("run-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitTerminal(t, store, "run-1")

	if _, err := exec.Start("run-1"); !errors.Is(err, ErrRunTerminal) {
		t.Fatalf("expected ErrRunTerminal on completed run, got %v", err)
	}
}

func TestExecutorStop(t *testing.T) {
	store, exec := newTestExecutor()
	store.Create("run-1", &RunInput{Detected: "Intestine", TargetN: 1.0})

	rec, err := exec.Stop("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != models.RunStatusCancelled {
		t.Fatalf("expected cancelled, got %s", rec.Status)
	}

	if _, err := exec.Stop(""); !errors.Is(err, ErrRunIDMissing) {
		t.Fatalf("expected ErrRunIDMissing, got %v", err)
	}
}

func TestExecutorSynchronousRun(t *testing.T) {
	_, exec := newTestExecutor()

	result, err := exec.Run(context.Background(), &RunInput{
		Detected: "Intestine",
		TargetN:  1.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Run == nil || len(result.Run.Series) == 0 {
		t.Fatalf("expected a completed run")
	}
}
