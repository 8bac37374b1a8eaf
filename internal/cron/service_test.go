package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/metrics"
)

type fakeLock struct {
	held     bool
	released int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.released++
	return nil
}

type testJob struct {
	name string
	rows int64
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) (int64, error) {
	t.runs++
	return t.rows, t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	jobMetrics := metrics.NewCronJobMetrics(reg)
	ok := &testJob{name: "expiry", rows: 3}
	failing := &testJob{name: "retention", err: errors.New("boom")}
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(ok, failing),
		Lock:     lock,
		Metrics:  jobMetrics,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if ok.runs != 1 || failing.runs != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", ok.runs, failing.runs)
	}
	if lock.released != 1 || lock.held {
		t.Fatalf("expected lock released once, released=%d held=%v", lock.released, lock.held)
	}

	count, err := testutil.GatherAndCount(reg, "maintenance_job_runs_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two run series, got %d", count)
	}
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	job := &testJob{name: "expiry"}
	lock := &fakeLock{held: true}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: lock})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job to be skipped, ran %d", job.runs)
	}
	if lock.released != 0 {
		t.Fatalf("lock held elsewhere must not be released")
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "expiry"}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: &fakeLock{}})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected missing lock error")
	}
}
