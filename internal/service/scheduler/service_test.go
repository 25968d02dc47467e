package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/kirkpatrick8/eventpool/internal/config"
	"github.com/kirkpatrick8/eventpool/internal/service/leaderboard"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

type mockLeaderboardService struct {
	entries []leaderboard.Entry
	err     error
	calls   int
}

func (m *mockLeaderboardService) Get(_ context.Context) ([]leaderboard.Entry, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

type mockNotifier struct {
	digests [][]leaderboard.Entry
	err     error
}

func (m *mockNotifier) LeaderboardDigest(entries []leaderboard.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.digests = append(m.digests, entries)
	return nil
}

func testConfig(enabled bool) *config.SchedulerConfig {
	return &config.SchedulerConfig{
		Enabled:    enabled,
		DigestCron: "0 21 * * *",
		Timezone:   "Europe/London",
	}
}

func TestRunDigestSendsStandings(t *testing.T) {
	lb := &mockLeaderboardService{entries: []leaderboard.Entry{
		{Rank: 1, Name: "Alice", Points: 500},
		{Rank: 2, Name: "Bob", Points: 250},
	}}
	notifier := &mockNotifier{}

	svc, err := NewService(testConfig(true), lb, notifier, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create scheduler: %v", err)
	}

	svc.RunDigest()

	if lb.calls != 1 {
		t.Errorf("expected 1 leaderboard read, got %d", lb.calls)
	}
	if len(notifier.digests) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(notifier.digests))
	}
	if len(notifier.digests[0]) != 2 {
		t.Errorf("expected 2 entries in digest, got %d", len(notifier.digests[0]))
	}
}

func TestRunDigestSkipsDeliveryOnReadFailure(t *testing.T) {
	lb := &mockLeaderboardService{err: fmt.Errorf("store unavailable")}
	notifier := &mockNotifier{}

	svc, err := NewService(testConfig(true), lb, notifier, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create scheduler: %v", err)
	}

	svc.RunDigest()

	if len(notifier.digests) != 0 {
		t.Errorf("digest must not be sent when the read fails, got %d", len(notifier.digests))
	}
}

func TestStartDisabledSchedulesNothing(t *testing.T) {
	svc, err := NewService(testConfig(false), &mockLeaderboardService{}, &mockNotifier{}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create scheduler: %v", err)
	}

	if err := svc.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(svc.cron.Entries()) != 0 {
		t.Errorf("disabled scheduler must register no jobs, got %d", len(svc.cron.Entries()))
	}
}

func TestStartRejectsBadCronExpression(t *testing.T) {
	cfg := testConfig(true)
	cfg.DigestCron = "not a cron expression"

	svc, err := NewService(cfg, &mockLeaderboardService{}, &mockNotifier{}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create scheduler: %v", err)
	}

	if err := svc.Start(); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestNewServiceRejectsBadTimezone(t *testing.T) {
	cfg := testConfig(true)
	cfg.Timezone = "Not/AZone"

	if _, err := NewService(cfg, &mockLeaderboardService{}, &mockNotifier{}, logger.NewNop()); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestStartAndStop(t *testing.T) {
	svc, err := NewService(testConfig(true), &mockLeaderboardService{}, &mockNotifier{}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create scheduler: %v", err)
	}

	if err := svc.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(svc.cron.Entries()) != 1 {
		t.Errorf("expected 1 scheduled job, got %d", len(svc.cron.Entries()))
	}

	svc.Stop()
}
