package nakama

import (
	"context"
	"fmt"
	"sync"

	"github.com/jimmmmothy/Belote-Enterprise/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// sessions lists the session ids a message went to; nil means broadcast.
func (m sentMessage) sessions() []string {
	if m.presences == nil {
		return nil
	}
	out := make([]string, len(m.presences))
	for i, p := range m.presences {
		out[i] = p.GetSessionId()
	}
	return out
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{opCode: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) byOp(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.messages {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

func (md *mockDispatcher) reset() {
	md.messages = nil
}

type fakePresence struct {
	userID    string
	sessionID string
	username  string
}

func newPresence(userID string) *fakePresence {
	return &fakePresence{userID: userID, sessionID: "s-" + userID, username: "name-" + userID}
}

func (p *fakePresence) GetHidden() bool                   { return false }
func (p *fakePresence) GetPersistence() bool              { return false }
func (p *fakePresence) GetUsername() string               { return p.username }
func (p *fakePresence) GetStatus() string                 { return "" }
func (p *fakePresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p *fakePresence) GetUserId() string                 { return p.userID }
func (p *fakePresence) GetSessionId() string              { return p.sessionID }
func (p *fakePresence) GetNodeId() string                 { return "node-1" }

type fakeMatchData struct {
	*fakePresence
	opCode int64
	data   []byte
}

func (m fakeMatchData) GetOpCode() int64      { return m.opCode }
func (m fakeMatchData) GetData() []byte       { return m.data }
func (m fakeMatchData) GetReliable() bool     { return true }
func (m fakeMatchData) GetReceiveTime() int64 { return 0 }

func message(p *fakePresence, opCode int64, data string) runtime.MatchData {
	return fakeMatchData{fakePresence: p, opCode: opCode, data: []byte(data)}
}

type memoryHistory struct {
	records []ports.RoundRecord
}

func (h *memoryHistory) RecordRound(_ context.Context, r ports.RoundRecord) error {
	h.records = append(h.records, r)
	return nil
}

type storageKey struct {
	collection, key, userID string
}

// fakeNakama implements the slice of runtime.NakamaModule the adapters and
// RPCs use. Anything else panics through the nil embedded interface.
type fakeNakama struct {
	runtime.NakamaModule

	mu       sync.Mutex
	objects  map[storageKey]*api.StorageObject
	versions int
	writes   []*runtime.StorageWrite

	matches      []*api.Match
	listQueries  []string
	created      []map[string]interface{}
	signalReply  string
	signalErr    error
	signals      []string
	profileCalls []string
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{objects: make(map[storageKey]*api.StorageObject)}
}

func (f *fakeNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.StorageObject
	for _, r := range reads {
		if obj, ok := f.objects[storageKey{r.Collection, r.Key, r.UserID}]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

// StorageWrite applies all writes or none, honouring "*" and explicit versions.
func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range writes {
		existing, ok := f.objects[storageKey{w.Collection, w.Key, w.UserID}]
		switch {
		case w.Version == "*" && ok:
			return nil, runtime.ErrStorageRejectedVersion
		case w.Version != "" && w.Version != "*" && (!ok || existing.Version != w.Version):
			return nil, runtime.ErrStorageRejectedVersion
		}
	}

	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		f.versions++
		version := fmt.Sprintf("v%d", f.versions)
		f.objects[storageKey{w.Collection, w.Key, w.UserID}] = &api.StorageObject{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Value:      w.Value,
			Version:    version,
		}
		f.writes = append(f.writes, w)
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID, Version: version})
	}
	return acks, nil
}

func (f *fakeNakama) object(collection, key, userID string) (*api.StorageObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[storageKey{collection, key, userID}]
	return obj, ok
}

func (f *fakeNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	f.listQueries = append(f.listQueries, query)
	return f.matches, nil
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	if module != MatchNameBelote {
		return "", fmt.Errorf("unknown module %s", module)
	}
	f.created = append(f.created, params)
	return fmt.Sprintf("match-%d", len(f.created)), nil
}

func (f *fakeNakama) MatchSignal(ctx context.Context, id string, data string) (string, error) {
	f.signals = append(f.signals, data)
	return f.signalReply, f.signalErr
}

func (f *fakeNakama) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	f.profileCalls = append(f.profileCalls, userID+":"+displayName)
	return nil
}
