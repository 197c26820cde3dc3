package live_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/live"
	"github.com/Kapsk2801/Lost-Found/internal/logging"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type source struct {
	loads atomic.Int32
	size  atomic.Int32
	fail  atomic.Bool
}

func (s *source) load() ([]*model.Item, error) {
	s.loads.Add(1)
	if s.fail.Load() {
		return nil, errors.New("store unavailable")
	}
	items := make([]*model.Item, s.size.Load())
	for i := range items {
		items[i] = model.NewItem(model.ReportFound)
	}
	return items, nil
}

func next(t *testing.T, s *live.Subscription) live.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snapshot, err := s.Next(ctx)
	require.NoError(t, err)
	return snapshot
}

func TestSubscribeReceivesCurrentSnapshot(t *testing.T) {
	src := &source{}
	src.size.Store(2)
	hub := live.NewHub(src.load, time.Millisecond, logging.Discard())
	defer hub.Close()

	s, err := hub.Subscribe()
	require.NoError(t, err)

	snapshot := next(t, s)
	assert.EqualValues(t, 1, snapshot.Sequence)
	assert.Len(t, snapshot.Items, 2)

	// A late subscriber gets the last snapshot without reloading.
	late, err := hub.Subscribe()
	require.NoError(t, err)
	assert.EqualValues(t, 1, next(t, late).Sequence)
	assert.EqualValues(t, 1, src.loads.Load())
	assert.Equal(t, 2, hub.Len())
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	src := &source{}
	hub := live.NewHub(src.load, time.Millisecond, logging.Discard())
	defer hub.Close()

	s, err := hub.Subscribe()
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		src.size.Store(int32(i))
		require.NoError(t, hub.Publish())
	}

	snapshot := next(t, s)
	assert.EqualValues(t, 6, snapshot.Sequence)
	assert.Len(t, snapshot.Items, 5)

	select {
	case extra := <-s.C():
		t.Fatalf("unexpected snapshot %d", extra.Sequence)
	default:
	}
}

func TestChangedIsDebounced(t *testing.T) {
	src := &source{}
	hub := live.NewHub(src.load, 50*time.Millisecond, logging.Discard())
	defer hub.Close()

	s, err := hub.Subscribe()
	require.NoError(t, err)
	next(t, s)

	for i := 0; i < 10; i++ {
		hub.Changed()
	}

	snapshot := next(t, s)
	assert.EqualValues(t, 2, snapshot.Sequence)
	assert.EqualValues(t, 2, src.loads.Load())
}

func TestPublishFailure(t *testing.T) {
	src := &source{}
	src.fail.Store(true)
	hub := live.NewHub(src.load, time.Millisecond, logging.Discard())
	defer hub.Close()

	_, err := hub.Subscribe()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Len())
}

func TestClose(t *testing.T) {
	src := &source{}
	hub := live.NewHub(src.load, time.Millisecond, logging.Discard())

	s, err := hub.Subscribe()
	require.NoError(t, err)
	next(t, s)

	hub.Close()
	_, err = s.Next(context.Background())
	assert.Equal(t, live.ErrClosed, err)

	_, err = hub.Subscribe()
	assert.Equal(t, live.ErrClosed, err)
	assert.Equal(t, live.ErrClosed, hub.Publish())

	s.Close() // no-op
	hub.Changed()
}

func TestSubscriptionClose(t *testing.T) {
	src := &source{}
	hub := live.NewHub(src.load, time.Millisecond, logging.Discard())
	defer hub.Close()

	s, err := hub.Subscribe()
	require.NoError(t, err)
	s.Close()
	s.Close()

	assert.Equal(t, 0, hub.Len())
	require.NoError(t, hub.Publish())
}
