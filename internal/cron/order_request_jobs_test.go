package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubOrderRequests struct {
	expireCutoff time.Time
	deleteCutoff time.Time
	rows         int64
	err          error
}

func (s *stubOrderRequests) ExpirePendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.expireCutoff = cutoff
	return s.rows, s.err
}

func (s *stubOrderRequests) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.deleteCutoff = cutoff
	return s.rows, s.err
}

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestOrderRequestExpiryJobUsesTTLCutoff(t *testing.T) {
	repo := &stubOrderRequests{rows: 4}
	job, err := NewOrderRequestExpiryJob(OrderRequestExpiryJobParams{
		Logger:     testLogger(),
		Repository: repo,
		PendingTTL: 48 * time.Hour,
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "order-request-expiry" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	rows, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rows != 4 {
		t.Fatalf("expected 4 rows, got %d", rows)
	}
	if want := fixedNow.Add(-48 * time.Hour); !repo.expireCutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.expireCutoff)
	}
}

func TestOrderRequestExpiryJobDefaultsTTL(t *testing.T) {
	repo := &stubOrderRequests{}
	job, err := NewOrderRequestExpiryJob(OrderRequestExpiryJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := fixedNow.Add(-72 * time.Hour); !repo.expireCutoff.Equal(want) {
		t.Fatalf("expected default cutoff %s, got %s", want, repo.expireCutoff)
	}
}

func TestOrderRequestExpiryJobWrapsRepositoryError(t *testing.T) {
	boom := errors.New("db down")
	job, err := NewOrderRequestExpiryJob(OrderRequestExpiryJobParams{
		Logger:     testLogger(),
		Repository: &stubOrderRequests{err: boom},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if _, err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestOrderRequestRetentionJobUsesRetentionDays(t *testing.T) {
	repo := &stubOrderRequests{rows: 2}
	job, err := NewOrderRequestRetentionJob(OrderRequestRetentionJobParams{
		Logger:        testLogger(),
		Repository:    repo,
		RetentionDays: 30,
		Now:           func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	rows, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 rows, got %d", rows)
	}
	if want := fixedNow.AddDate(0, 0, -30); !repo.deleteCutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.deleteCutoff)
	}
}

func TestOrderRequestJobsRequireRepository(t *testing.T) {
	if _, err := NewOrderRequestExpiryJob(OrderRequestExpiryJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected expiry job to require a repository")
	}
	if _, err := NewOrderRequestRetentionJob(OrderRequestRetentionJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected retention job to require a repository")
	}
}
