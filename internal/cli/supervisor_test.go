//go:build linux

package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aleksandar-had/feedback-arc-set/pkg/ring"
)

// recordingReporter captures what consume would print.
type recordingReporter struct {
	improved []ring.Solution
	acyclic  bool
}

func (r *recordingReporter) Improved(sol ring.Solution) { r.improved = append(r.improved, sol) }
func (r *recordingReporter) Acyclic()                   { r.acyclic = true }

func testSessionPair(t *testing.T) (consumer, producer *ring.Session) {
	t.Helper()
	name := fmt.Sprintf("fbarc-cli-test-%d-%s", os.Getpid(), t.Name())

	consumer, err := ring.Create(name)
	if err != nil {
		t.Fatalf("ring.Create() error: %v", err)
	}
	t.Cleanup(func() { consumer.Close() })

	producer, err = ring.Open(name)
	if err != nil {
		t.Fatalf("ring.Open() error: %v", err)
	}
	t.Cleanup(func() { producer.Close() })
	return consumer, producer
}

func quietLogger() *log.Logger {
	return newLogger(&bytes.Buffer{}, log.ErrorLevel)
}

func TestConsumeReportsOnlyImprovements(t *testing.T) {
	consumer, producer := testSessionPair(t)

	sols := []ring.Solution{
		{Edges: []ring.Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 0}}},
		{Edges: []ring.Edge{{From: 0, To: 1}, {From: 1, To: 2}}}, // improvement
		{Edges: []ring.Edge{{From: 2, To: 0}, {From: 1, To: 0}}}, // equal, discarded
		{Edges: []ring.Edge{{From: 2, To: 0}}},                   // improvement
	}
	for _, sol := range sols {
		if err := producer.Publish(context.Background(), sol); err != nil {
			t.Fatalf("Publish() error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		// Stop consume once the last candidate has been accepted.
		for consumer.BestSize() != 1 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	rep := &recordingReporter{}
	if err := consume(ctx, consumer, rep, quietLogger()); err != nil {
		t.Fatalf("consume() error: %v", err)
	}

	if len(rep.improved) != 3 {
		t.Fatalf("got %d reported solutions, want 3", len(rep.improved))
	}
	wantSizes := []int{3, 2, 1}
	for i, sol := range rep.improved {
		if sol.Size() != wantSizes[i] {
			t.Errorf("improvement %d has size %d, want %d", i, sol.Size(), wantSizes[i])
		}
	}
	if rep.acyclic {
		t.Error("Acyclic() reported without a zero-edge witness")
	}
	if !consumer.StopRequested() {
		t.Error("consume should raise the stop flag on exit")
	}
}

func TestConsumeAcyclicWitnessStopsSession(t *testing.T) {
	consumer, producer := testSessionPair(t)

	if err := producer.Publish(context.Background(), ring.Solution{}); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	rep := &recordingReporter{}
	if err := consume(context.Background(), consumer, rep, quietLogger()); err != nil {
		t.Fatalf("consume() error: %v", err)
	}

	if !rep.acyclic {
		t.Error("consume should report the acyclic witness")
	}
	if !consumer.AcyclicFound() {
		t.Error("consume should set the shared acyclic flag")
	}
	if !consumer.StopRequested() {
		t.Error("consume should raise the stop flag")
	}
	if got := consumer.BestSize(); got != 0 {
		t.Errorf("BestSize() = %d, want 0", got)
	}
}

func TestConsumeFlushesRingOnExit(t *testing.T) {
	consumer, producer := testSessionPair(t)

	// Fill the ring so a producer would block on the next publish.
	for i := 0; i < ring.Capacity; i++ {
		sol := ring.Solution{Edges: make([]ring.Edge, ring.MaxSolutionEdges)}
		if err := producer.Publish(context.Background(), sol); err != nil {
			t.Fatalf("Publish() error: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := consume(ctx, consumer, &recordingReporter{}, quietLogger()); err != nil {
		t.Fatalf("consume() error: %v", err)
	}

	// All slots must be free again or a blocked producer could never exit.
	done := make(chan error, 1)
	go func() {
		sol := ring.Solution{Edges: []ring.Edge{{From: 0, To: 1}}}
		done <- producer.Publish(context.Background(), sol)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Publish() after flush error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Publish() still blocked after consume flushed the ring")
	}
}
