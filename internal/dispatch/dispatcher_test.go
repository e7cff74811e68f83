package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-voice/internal/cursor"
	"github.com/i474232898/weather-voice/internal/telegram"
)

const authorized = "42"

// --- test helpers ---

type fakeMessenger struct {
	updates    []telegram.Update
	fetchErr   error
	resetErr   error
	sendErr    error
	resets     int
	offsets    []int64
	sent       []string
	invokedLog *[]string
}

func (f *fakeMessenger) ResetWebhook() error {
	f.resets++
	if f.invokedLog != nil {
		*f.invokedLog = append(*f.invokedLog, "reset")
	}
	return f.resetErr
}

func (f *fakeMessenger) FetchUpdates(offset int64) ([]telegram.Update, error) {
	f.offsets = append(f.offsets, offset)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []telegram.Update
	for _, u := range f.updates {
		if u.ID >= offset {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeMessenger) SendText(text string) error {
	f.sent = append(f.sent, text)
	if f.invokedLog != nil {
		*f.invokedLog = append(*f.invokedLog, "ack")
	}
	return f.sendErr
}

type fakeInvoker struct {
	calls    int
	code     int
	err      error
	onInvoke func()
}

func (f *fakeInvoker) Invoke(context.Context) (int, error) {
	f.calls++
	if f.onInvoke != nil {
		f.onInvoke()
	}
	return f.code, f.err
}

type failingStore struct {
	*cursor.FileStore
}

func (failingStore) Save(int64) error { return errors.New("disk full") }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T, initial *int64) *cursor.FileStore {
	t.Helper()
	s := cursor.NewFileStore(filepath.Join(t.TempDir(), "offset.txt"))
	if initial != nil {
		require.NoError(t, s.Save(*initial))
	}
	return s
}

func ptr(v int64) *int64 { return &v }

func msg(id int64, chat, text string) telegram.Update {
	return telegram.Update{ID: id, ChatID: chat, Text: text}
}

func newTestDispatcher(m *fakeMessenger, s CursorStore, inv *fakeInvoker) *Dispatcher {
	return New(m, s, inv, testLogger(), Options{AuthorizedChat: authorized, AckText: "on it"})
}

func loadCursor(t *testing.T, s *cursor.FileStore) int64 {
	t.Helper()
	v, err := s.Load()
	require.NoError(t, err)
	return v
}

// --- tests ---

func TestCycleNoUpdatesLeavesCursorUnchanged(t *testing.T) {
	store := newStore(t, ptr(500))
	m := &fakeMessenger{}
	inv := &fakeInvoker{}

	res, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "empty", res.Outcome())
	assert.Equal(t, int64(500), loadCursor(t, store))
	assert.Equal(t, []int64{500}, m.offsets)
	assert.Equal(t, 1, m.resets)
	assert.Zero(t, inv.calls)
	assert.Empty(t, m.sent)
}

func TestCycleNoUpdatesDoesNotCreateCursorFile(t *testing.T) {
	store := newStore(t, nil)
	m := &fakeMessenger{}

	_, err := newTestDispatcher(m, store, &fakeInvoker{}).Cycle(context.Background())
	require.NoError(t, err)

	_, err = store.Load()
	require.ErrorIs(t, err, cursor.ErrNoCursor)
}

func TestCycleAdvancesWithoutTrigger(t *testing.T) {
	store := newStore(t, ptr(100))
	m := &fakeMessenger{updates: []telegram.Update{
		msg(100, authorized, "hello"),
		msg(103, "999", "weather"),
		msg(101, authorized, "forecast"),
	}}
	inv := &fakeInvoker{}

	res, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "advanced", res.Outcome())
	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, int64(104), res.Cursor)
	assert.Equal(t, int64(104), loadCursor(t, store))
	assert.Zero(t, inv.calls)
	assert.Empty(t, m.sent)
}

func TestCycleTriggersOnceForMultipleMatches(t *testing.T) {
	store := newStore(t, ptr(10))
	m := &fakeMessenger{updates: []telegram.Update{
		msg(10, authorized, "/weather"),
		msg(11, authorized, "W"),
		msg(12, authorized, "  Weather  "),
	}}
	inv := &fakeInvoker{}

	res, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Triggered)
	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, []string{"on it"}, m.sent)
	assert.Equal(t, int64(13), loadCursor(t, store))
}

func TestCycleMatchAnywhereInBatchCoversAll(t *testing.T) {
	store := newStore(t, nil)
	m := &fakeMessenger{updates: []telegram.Update{
		msg(7, authorized, "weather"),
		msg(8, authorized, "thanks"),
	}}
	inv := &fakeInvoker{}

	res, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Triggered)
	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, int64(9), loadCursor(t, store))
}

func TestCycleSavesCursorBeforeInvoking(t *testing.T) {
	store := newStore(t, ptr(1))
	m := &fakeMessenger{updates: []telegram.Update{msg(5, authorized, "w")}}

	var seen int64
	inv := &fakeInvoker{onInvoke: func() { seen = loadCursor(t, store) }}

	_, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), seen)
}

func TestCycleDoesNotReplayOnNextRun(t *testing.T) {
	store := newStore(t, nil)
	m := &fakeMessenger{updates: []telegram.Update{msg(20, authorized, "weather")}}
	inv := &fakeInvoker{}
	d := newTestDispatcher(m, store, inv)

	_, err := d.Cycle(context.Background())
	require.NoError(t, err)
	res, err := d.Cycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "empty", res.Outcome())
	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, []int64{0, 21}, m.offsets)
}

func TestCycleInvokerFailureIsNotPropagated(t *testing.T) {
	store := newStore(t, nil)
	m := &fakeMessenger{updates: []telegram.Update{msg(1, authorized, "weather")}}

	inv := &fakeInvoker{code: 1}
	res, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)

	inv = &fakeInvoker{code: -1, err: errors.New("exec format error")}
	m.updates = []telegram.Update{msg(2, authorized, "weather")}
	_, err = newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), loadCursor(t, store))
}

func TestCycleAckFailureStillTriggers(t *testing.T) {
	var order []string
	store := newStore(t, nil)
	m := &fakeMessenger{
		updates:    []telegram.Update{msg(1, authorized, "weather")},
		sendErr:    errors.New("blocked"),
		invokedLog: &order,
	}
	inv := &fakeInvoker{onInvoke: func() { order = append(order, "invoke") }}

	_, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reset", "ack", "invoke"}, order)
}

func TestCycleFetchFailureIsEmpty(t *testing.T) {
	store := newStore(t, ptr(77))
	m := &fakeMessenger{fetchErr: errors.New("502 bad gateway")}
	inv := &fakeInvoker{}

	res, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "empty", res.Outcome())
	assert.Equal(t, int64(77), loadCursor(t, store))
}

func TestCycleWebhookResetFailureKeepsPolling(t *testing.T) {
	store := newStore(t, nil)
	m := &fakeMessenger{
		resetErr: errors.New("timeout"),
		updates:  []telegram.Update{msg(3, authorized, "weather")},
	}
	inv := &fakeInvoker{}

	_, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)
}

func TestCycleCorruptCursorFailsOpen(t *testing.T) {
	store := newStore(t, nil)
	require.NoError(t, writeFile(store.Path(), "garbage"))
	m := &fakeMessenger{updates: []telegram.Update{msg(4, authorized, "hi")}}

	_, err := newTestDispatcher(m, store, &fakeInvoker{}).Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, m.offsets)
	assert.Equal(t, int64(5), loadCursor(t, store))
}

func TestCycleSaveFailureSkipsTrigger(t *testing.T) {
	store := failingStore{newStore(t, nil)}
	m := &fakeMessenger{updates: []telegram.Update{msg(1, authorized, "weather")}}
	inv := &fakeInvoker{}

	_, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.Error(t, err)
	assert.Zero(t, inv.calls)
	assert.Empty(t, m.sent)
}

func TestCycleSkipsWhenLocked(t *testing.T) {
	store := newStore(t, ptr(9))
	other := cursor.NewFileStore(store.Path())
	unlock, err := other.Lock()
	require.NoError(t, err)
	defer unlock()

	m := &fakeMessenger{updates: []telegram.Update{msg(9, authorized, "weather")}}
	inv := &fakeInvoker{}

	res, err := newTestDispatcher(m, store, inv).Cycle(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Zero(t, m.resets)
	assert.Zero(t, inv.calls)
	assert.Equal(t, int64(9), loadCursor(t, store))
}
