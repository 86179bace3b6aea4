package gcppubsub_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyctaxi/mq/gcppubsub"
	"nyctaxi/mq/mq"
)

// These tests need the Pub/Sub emulator:
//
//	gcloud beta emulators pubsub start --project=test-project
//
// They are skipped when PUBSUB_EMULATOR_HOST is not set.
const testProjectID = "test-project"

func getTestQueue(t *testing.T) *gcppubsub.DatasetQueue {
	t.Helper()
	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		t.Skip("Skipping test: PUBSUB_EMULATOR_HOST environment variable not set. Please start the Pub/Sub emulator.")
	}
	q, err := gcppubsub.NewDatasetQueue(context.Background(), testProjectID)
	require.NoError(t, err)
	t.Cleanup(q.Close)
	return q
}

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

func TestDatasetQueueFilteredSubscribe(t *testing.T) {
	q := getTestQueue(t)

	queensID, queens, err := q.Subscribe("Queens")
	require.NoError(t, err)
	defer q.DeSubscribe(queensID)
	allID, all, err := q.Subscribe("")
	require.NoError(t, err)
	defer q.DeSubscribe(allID)

	// allow the subscriptions to become ready on the emulator
	time.Sleep(2 * time.Second)

	bronx := mq.DatasetEvent{ID: uuid.New(), Borough: "Bronx", Sink: "csv", RecordCount: 10, GeneratedAt: time.Now().UTC()}
	queensEvent := mq.DatasetEvent{ID: uuid.New(), Borough: "Queens", Sink: "json", RecordCount: 20, GeneratedAt: time.Now().UTC()}
	require.NoError(t, q.Publish(bronx))
	require.NoError(t, q.Publish(queensEvent))

	got, ok := receiveMsgWithTimeout(t, queens, 30*time.Second)
	require.True(t, ok)
	assert.Equal(t, queensEvent.ID, got.ID)
	assert.True(t, queensEvent.GeneratedAt.Equal(got.GeneratedAt))

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		got, ok := receiveMsgWithTimeout(t, all, 30*time.Second)
		require.True(t, ok)
		seen[got.ID] = true
	}
	assert.True(t, seen[bronx.ID])
	assert.True(t, seen[queensEvent.ID])
}

func TestDatasetQueueDeSubscribe(t *testing.T) {
	q := getTestQueue(t)

	id, ch, err := q.Subscribe("Manhattan")
	require.NoError(t, err)
	require.NoError(t, q.DeSubscribe(id))

	_, ok := receiveMsgWithTimeout(t, ch, 30*time.Second)
	assert.False(t, ok)
	assert.Error(t, q.DeSubscribe(uuid.New()))
}
