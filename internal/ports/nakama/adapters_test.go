package nakama

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPlayerStats(t *testing.T, nk *fakeNakama, userID string) ports.PlayerStats {
	t.Helper()
	obj, ok := nk.object(statsCollection, statsKey, userID)
	require.True(t, ok, "no stats for %s", userID)
	var s ports.PlayerStats
	require.NoError(t, json.Unmarshal([]byte(obj.Value), &s))
	return s
}

func TestStatsAdapterInitStatsOnce(t *testing.T) {
	nk := newFakeNakama()
	adapter := NewNakamaStatsAdapter(nk)
	ctx := context.Background()

	created, err := adapter.InitStatsOnce(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = adapter.InitStatsOnce(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, created, "second init must not overwrite")

	assert.Equal(t, runtime.STORAGE_PERMISSION_PUBLIC_READ, nk.writes[0].PermissionRead)
	assert.Equal(t, 0, readPlayerStats(t, nk, "u1").RoundsPlayed)

	_, err = adapter.InitStatsOnce(ctx, "")
	assert.Error(t, err)
}

func TestRoundHistoryAdapterRecordsHumansOnly(t *testing.T) {
	nk := newFakeNakama()
	ctx := context.Background()
	finished := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)

	_, err := NewNakamaStatsAdapter(nk).InitStatsOnce(ctx, "u0")
	require.NoError(t, err)

	adapter := NewNakamaRoundHistoryAdapter(nk)
	record := ports.RoundRecord{
		GameID:     "g1",
		Round:      1,
		Contract:   "Hearts",
		BidderID:   "u0",
		Players:    []string{"u0", "bot-a", "u2", "bot-b"},
		Teams:      []int{0, 1, 0, 1},
		Team0:      100,
		Team1:      52,
		Total:      [2]int{100, 52},
		Tricks:     8,
		FinishedAt: finished,
	}
	require.NoError(t, adapter.RecordRound(ctx, record))

	for _, id := range []string{"u0", "u2"} {
		obj, ok := nk.object(roundHistoryCollection, "g1-0001", id)
		require.True(t, ok, "round not stored for %s", id)
		var stored ports.RoundRecord
		require.NoError(t, json.Unmarshal([]byte(obj.Value), &stored))
		assert.Equal(t, record.Total, stored.Total)
	}
	_, ok := nk.object(roundHistoryCollection, "g1-0001", "bot-a")
	assert.False(t, ok, "bots have no storage")

	s := readPlayerStats(t, nk, "u0")
	assert.Equal(t, ports.PlayerStats{RoundsPlayed: 1, RoundsWon: 1, PointsWon: 100, CreatedAt: s.CreatedAt}, s)
	assert.False(t, s.CreatedAt.IsZero())

	// u2 had no stats object yet; the first round creates it.
	s2 := readPlayerStats(t, nk, "u2")
	assert.Equal(t, 1, s2.RoundsWon)
	assert.True(t, s2.CreatedAt.Equal(finished))

	record.Round = 2
	record.Team0, record.Team1 = 40, 112
	record.Total = [2]int{140, 164}
	require.NoError(t, adapter.RecordRound(ctx, record))

	s = readPlayerStats(t, nk, "u0")
	assert.Equal(t, 2, s.RoundsPlayed)
	assert.Equal(t, 1, s.RoundsWon)
	assert.Equal(t, 140, s.PointsWon)
}

func TestRoundHistoryAdapterSkipsBotOnlyTables(t *testing.T) {
	nk := newFakeNakama()
	err := NewNakamaRoundHistoryAdapter(nk).RecordRound(context.Background(), ports.RoundRecord{
		GameID:  "g1",
		Round:   1,
		Players: []string{"bot-a", "bot-b", "bot-c", "bot-d"},
		Teams:   []int{0, 1, 0, 1},
	})
	require.NoError(t, err)
	assert.Empty(t, nk.writes)
}

func TestAccountAdapterUpdatesDisplayName(t *testing.T) {
	nk := newFakeNakama()
	require.NoError(t, NewNakamaAccountAdapter(nk).UpdateProfile(context.Background(), "u1", "LuckyJack1234", "LuckyJack1234"))
	assert.Equal(t, []string{"u1:LuckyJack1234"}, nk.profileCalls)
}
