package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

type fakeAccountPort struct {
	updateErr error
	names     []string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.names = append(f.names, displayName)
	return f.updateErr
}

type fakeStatsPort struct {
	err     error
	created bool
	calls   []string
}

func (f *fakeStatsPort) InitStatsOnce(ctx context.Context, userID string) (bool, error) {
	f.calls = append(f.calls, userID)
	if f.err != nil {
		return false, f.err
	}
	return f.created, nil
}

var tableName = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{4}$`)

func TestOnboardNewUser_CreatesStats(t *testing.T) {
	accounts := &fakeAccountPort{}
	stats := &fakeStatsPort{created: true}
	service := NewService(accounts, stats, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr != nil {
		t.Fatalf("Expected no profile update error, got %v", result.ProfileUpdateErr)
	}
	if !result.StatsCreated {
		t.Fatal("Expected stats to be marked as created")
	}
	if len(stats.calls) != 1 || stats.calls[0] != "user-1" {
		t.Fatalf("Expected one stats call for user-1, got %v", stats.calls)
	}
	if !tableName.MatchString(result.DisplayName) {
		t.Fatalf("Unexpected display name %q", result.DisplayName)
	}
	if len(accounts.names) != 1 || accounts.names[0] != result.DisplayName {
		t.Fatalf("Expected profile update with %q, got %v", result.DisplayName, accounts.names)
	}
}

func TestOnboardNewUser_AccountUpdateFailureStillCreatesStats(t *testing.T) {
	stats := &fakeStatsPort{created: true}
	service := NewService(&fakeAccountPort{updateErr: errors.New("update failed")}, stats, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr == nil {
		t.Fatal("Expected profile update error to be captured")
	}
	if len(stats.calls) != 1 {
		t.Fatalf("Expected 1 stats call, got %d", len(stats.calls))
	}
}

func TestOnboardNewUser_StatsFailureReturnsError(t *testing.T) {
	service := NewService(&fakeAccountPort{}, &fakeStatsPort{err: errors.New("storage down")}, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when stats creation fails")
	}
}

func TestOnboardNewUser_StatsAlreadyPresent(t *testing.T) {
	service := NewService(&fakeAccountPort{}, &fakeStatsPort{created: false}, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.StatsCreated {
		t.Fatal("Expected stats to be reported as already present")
	}
}

func TestOnboardNewUser_RequiresPorts(t *testing.T) {
	service := NewService(nil, nil, nil)
	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error for unconfigured service")
	}
}
