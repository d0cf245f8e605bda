package workflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"clipcart/internal/notifications"
	"clipcart/internal/stage"
	"clipcart/internal/testsupport"
	"clipcart/internal/workflow"
)

type countingStage struct {
	name   string
	passes atomic.Int64
	err    error
}

func (s *countingStage) Name() string { return s.name }

func (s *countingStage) RunPass(context.Context) error {
	s.passes.Add(1)
	return s.err
}

func (s *countingStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(s.name)
}

type recordingNotifier struct {
	events []notifications.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	n.events = append(n.events, event)
	return nil
}

func TestRunOnceExecutesStagesInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	var order []string
	mk := func(name string) *orderedStage {
		return &orderedStage{name: name, order: &order}
	}
	m := workflow.NewManager(cfg, st, nil, &recordingNotifier{}, mk("download"), mk("render"), mk("upload"))
	m.RunOnce(context.Background())

	want := []string{"download", "render", "upload"}
	if len(order) != len(want) {
		t.Fatalf("unexpected pass order %v", order)
	}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("pass %d: got %s want %s", i, order[i], name)
		}
	}
}

type orderedStage struct {
	name  string
	order *[]string
}

func (s *orderedStage) Name() string { return s.name }

func (s *orderedStage) RunPass(context.Context) error {
	*s.order = append(*s.order, s.name)
	return nil
}

func (s *orderedStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(s.name)
}

func TestRunOnceIsolatesStageFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	broken := &countingStage{name: "download", err: errors.New("resolver exploded")}
	healthy := &countingStage{name: "render"}
	notifier := &recordingNotifier{}
	m := workflow.NewManager(cfg, st, nil, notifier, broken, healthy)
	m.RunOnce(context.Background())

	if healthy.passes.Load() != 1 {
		t.Fatal("expected later stage to run despite earlier failure")
	}
	if m.LastError() == nil {
		t.Fatal("expected recorded failure")
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventPipelineError {
		t.Fatalf("unexpected notifications %v", notifier.events)
	}
}

func TestStartAndStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.PollInterval = 1
	st := testsupport.MustOpenStore(t, cfg)

	s := &countingStage{name: "download"}
	m := workflow.NewManager(cfg, st, nil, &recordingNotifier{}, s)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.passes.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stage never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}

	m.Stop()
	if m.Running() {
		t.Fatal("expected manager to stop")
	}
	settled := s.passes.Load()
	time.Sleep(50 * time.Millisecond)
	if s.passes.Load() != settled {
		t.Fatal("stage ran after Stop returned")
	}
}

func TestStartRequiresStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	m := workflow.NewManager(cfg, st, nil, &recordingNotifier{})
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected error without stages")
	}
}

func TestHealthAggregatesStagesAndStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	m := workflow.NewManager(cfg, st, nil, &recordingNotifier{}, &countingStage{name: "download"})

	results := m.Health(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 health records, got %d", len(results))
	}
	for _, h := range results {
		if !h.Ready {
			t.Fatalf("expected %s to be ready: %s", h.Name, h.Detail)
		}
	}
}
