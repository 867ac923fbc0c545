// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitStarted(t *testing.T, svc *mockService, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		select {
		case <-svc.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: expected %d starts, got %d", svc.name, times, svc.startCount.Load())
		}
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("expected a root supervisor")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("expected defaults %+v, got %+v", DefaultTreeConfig(), tree.config)
	}

	custom, _ := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
	if custom.config.FailureBackoff != time.Second {
		t.Errorf("expected FailureBackoff 1s, got %v", custom.config.FailureBackoff)
	}
}

func TestSupervisorTree_RunsEveryLayer(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	data := newMockService("warmup", 0)
	messaging := newMockService("hub", 0)
	api := newMockService("http", 0)
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	for _, svc := range []*mockService{data, messaging, api} {
		waitStarted(t, svc, 1)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}

	for _, svc := range []*mockService{data, messaging, api} {
		if svc.stopCount.Load() != svc.startCount.Load() {
			t.Errorf("%s: expected every run to stop, started %d stopped %d", svc.name, svc.startCount.Load(), svc.stopCount.Load())
		}
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("expected no unstopped services, got %v (%v)", report, err)
	}
}

func TestSupervisorTree_RestartsFailedService(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	flaky := newMockService("flaky", 2)
	tree.AddDataService(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := tree.ServeBackground(ctx)

	waitStarted(t, flaky, 3)
	cancel()
	<-done

	if got := flaky.startCount.Load(); got < 3 {
		t.Errorf("expected at least 3 starts, got %d", got)
	}
}
