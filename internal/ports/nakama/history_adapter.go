package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jimmmmothy/Belote-Enterprise/internal/bot"
	"github.com/jimmmmothy/Belote-Enterprise/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const roundHistoryCollection = "belote_rounds"

// NakamaRoundHistoryAdapter stores a copy of every finished round for each
// human at the table and folds it into their stats.
type NakamaRoundHistoryAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaRoundHistoryAdapter(nk runtime.NakamaModule) *NakamaRoundHistoryAdapter {
	return &NakamaRoundHistoryAdapter{nk: nk}
}

func roundKey(record ports.RoundRecord) string {
	return fmt.Sprintf("%s-%04d", record.GameID, record.Round)
}

// RecordRound writes the round and the updated stats in one storage call.
// Stats writes carry the version that was read, so a concurrent update
// fails the whole call instead of losing a round.
func (a *NakamaRoundHistoryAdapter) RecordRound(ctx context.Context, record ports.RoundRecord) error {
	humans := make([]string, 0, len(record.Players))
	for _, id := range record.Players {
		if id != "" && !bot.IsBot(id) {
			humans = append(humans, id)
		}
	}
	if len(humans) == 0 {
		return nil
	}

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal round record: %w", err)
	}

	stats, versions, err := a.readStats(ctx, humans)
	if err != nil {
		return err
	}

	writes := make([]*runtime.StorageWrite, 0, 2*len(humans))
	for _, id := range humans {
		writes = append(writes, &runtime.StorageWrite{
			Collection:      roundHistoryCollection,
			Key:             roundKey(record),
			UserID:          id,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})

		s := stats[id]
		points, won, _ := record.PointsFor(id)
		s.RoundsPlayed++
		s.PointsWon += points
		if won {
			s.RoundsWon++
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = record.FinishedAt
		}
		statsValue, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal player stats: %w", err)
		}
		version, ok := versions[id]
		if !ok {
			version = "*"
		}
		writes = append(writes, &runtime.StorageWrite{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          id,
			Value:           string(statsValue),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})
	}

	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to store round %s: %w", roundKey(record), err)
	}
	return nil
}

func (a *NakamaRoundHistoryAdapter) readStats(ctx context.Context, userIDs []string) (map[string]ports.PlayerStats, map[string]string, error) {
	reads := make([]*runtime.StorageRead, len(userIDs))
	for i, id := range userIDs {
		reads[i] = &runtime.StorageRead{Collection: statsCollection, Key: statsKey, UserID: id}
	}
	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read player stats: %w", err)
	}

	stats := make(map[string]ports.PlayerStats, len(objects))
	versions := make(map[string]string, len(objects))
	for _, obj := range objects {
		var s ports.PlayerStats
		if err := json.Unmarshal([]byte(obj.GetValue()), &s); err != nil {
			return nil, nil, fmt.Errorf("corrupt stats for %s: %w", obj.GetUserId(), err)
		}
		stats[obj.GetUserId()] = s
		versions[obj.GetUserId()] = obj.GetVersion()
	}
	return stats, versions, nil
}

var _ ports.RoundHistoryPort = (*NakamaRoundHistoryAdapter)(nil)
