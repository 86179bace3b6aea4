package goch

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyctaxi/mq/mq"
)

// receiveMsgWithTimeout returns the next message, or false on timeout or a closed channel.
func receiveMsgWithTimeout[T any](tb testing.TB, ch <-chan T, timeout time.Duration) (T, bool) {
	tb.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			var zero T
			return zero, false
		}
		return msg, true
	case <-time.After(timeout):
		var zero T
		return zero, false
	}
}

func waitClosed[T any](tb testing.TB, ch <-chan T, timeout time.Duration) bool {
	tb.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

type mockItem struct {
	Value int
	Topic string
}

func (item mockItem) GetTopic() string {
	return item.Topic
}

// publishEventually retries while the fan-out routine has not picked up earlier items.
func publishEventually[T mq.TopicProvider](tb testing.TB, q *fanOutQueueCore[T], item T) {
	tb.Helper()
	for i := 0; i < 100; i++ {
		if err := q.Publish(item); err == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	tb.Fatalf("could not publish %v", item)
}

func TestNewFanOutQueueCore(t *testing.T) {
	t.Parallel()

	t.Run("Unbuffered", func(t *testing.T) {
		core := newFanOutQueueCore[mockItem](0)
		defer core.Stop()
		assert.NotNil(t, core.publishChan)
		assert.Equal(t, 0, cap(core.publishChan))
		assert.NotNil(t, core.subscribers)
		assert.NotNil(t, core.quit)
		assert.Equal(t, 0, core.bufferSize)
	})

	t.Run("Buffered", func(t *testing.T) {
		core := newFanOutQueueCore[mockItem](10)
		defer core.Stop()
		assert.Equal(t, 10, cap(core.publishChan))
		assert.Equal(t, 10, core.bufferSize)
	})

	t.Run("NegativeBuffer", func(t *testing.T) {
		core := newFanOutQueueCore[mockItem](-3)
		defer core.Stop()
		assert.Equal(t, 0, core.bufferSize)
	})
}

func TestFanOutQueueCoreTopicRouting(t *testing.T) {
	t.Parallel()
	core := newFanOutQueueCore[mockItem](4)
	defer core.Stop()

	_, queens, err := core.Subscribe("Queens")
	require.NoError(t, err)
	_, all, err := core.Subscribe("")
	require.NoError(t, err)
	_, bronx, err := core.Subscribe("Bronx")
	require.NoError(t, err)

	require.NoError(t, core.Publish(mockItem{Value: 1, Topic: "Queens"}))

	msg, ok := receiveMsgWithTimeout(t, queens, time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, msg.Value)

	msg, ok = receiveMsgWithTimeout(t, all, time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, msg.Value)

	_, ok = receiveMsgWithTimeout(t, bronx, 50*time.Millisecond)
	assert.False(t, ok)
}

func TestFanOutQueueCoreDeSubscribe(t *testing.T) {
	t.Parallel()
	core := newFanOutQueueCore[mockItem](1)
	defer core.Stop()

	id, ch, err := core.Subscribe("")
	require.NoError(t, err)
	require.NoError(t, core.DeSubscribe(id))
	assert.True(t, waitClosed(t, ch, time.Second))

	assert.ErrorIs(t, core.DeSubscribe(id), ErrSubscriberNotFound)
	assert.ErrorIs(t, core.DeSubscribe(uuid.New()), ErrSubscriberNotFound)

	// publishing with no subscribers is fine
	publishEventually(t, core, mockItem{Value: 2})
}

func TestFanOutQueueCoreFull(t *testing.T) {
	t.Parallel()
	core := newFanOutQueueCore[mockItem](1)
	defer core.Stop()

	// a subscriber that never reads stalls the fan-out routine
	_, _, err := core.Subscribe("")
	require.NoError(t, err)

	var lastErr error
	for i := 0; i < 10 && lastErr == nil; i++ {
		lastErr = core.Publish(mockItem{Value: i})
	}
	assert.ErrorIs(t, lastErr, ErrQueueFull)
}

func TestFanOutQueueCoreDropsSlowSubscriber(t *testing.T) {
	t.Parallel()
	core := newFanOutQueueCore[mockItem](1)
	defer core.Stop()

	id, ch, err := core.Subscribe("")
	require.NoError(t, err)

	publishEventually(t, core, mockItem{Value: 1})
	publishEventually(t, core, mockItem{Value: 2})

	time.Sleep(4 * subscriberSendTimeout)

	msg, ok := receiveMsgWithTimeout(t, ch, time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, msg.Value)
	assert.True(t, waitClosed(t, ch, time.Second))
	assert.ErrorIs(t, core.DeSubscribe(id), ErrSubscriberNotFound)
}

func TestFanOutQueueCoreStop(t *testing.T) {
	t.Parallel()
	core := newFanOutQueueCore[mockItem](2)

	_, ch, err := core.Subscribe("Queens")
	require.NoError(t, err)

	core.Stop()
	core.Stop()

	assert.True(t, waitClosed(t, ch, time.Second))
	assert.ErrorIs(t, core.Publish(mockItem{Value: 1}), ErrQueueStopped)
	_, _, err = core.Subscribe("Queens")
	assert.ErrorIs(t, err, ErrQueueStopped)
}

func TestDatasetQueue(t *testing.T) {
	t.Parallel()
	q := NewDatasetQueue(4)
	defer q.Close()

	id, ch, err := q.Subscribe("Staten Island")
	require.NoError(t, err)

	event := mq.DatasetEvent{
		ID:          uuid.New(),
		Borough:     "Staten Island",
		Sink:        "csv",
		Path:        "public/staten_island_trips.csv",
		RecordCount: 3000,
		GeneratedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, q.Publish(mq.DatasetEvent{Borough: "Bronx"}))
	require.NoError(t, q.Publish(event))

	got, ok := receiveMsgWithTimeout(t, ch, time.Second)
	require.True(t, ok)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.RecordCount, got.RecordCount)
	assert.True(t, event.GeneratedAt.Equal(got.GeneratedAt))

	require.NoError(t, q.DeSubscribe(id))
}
