package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	ch           chan DatasetEvent
	topic        string
	desubscribed chan uuid.UUID
	err          error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{ch: make(chan DatasetEvent, 4), desubscribed: make(chan uuid.UUID, 1)}
}

func (f *fakeSubscriber) Subscribe(topic string) (uuid.UUID, <-chan DatasetEvent, error) {
	if f.err != nil {
		return uuid.Nil, nil, f.err
	}
	f.topic = topic
	return uuid.New(), f.ch, nil
}

func (f *fakeSubscriber) DeSubscribe(id uuid.UUID) error {
	f.desubscribed <- id
	return nil
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"none", "go_chan", "rabbitmq", "gcp_pub_sub"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeNone, m)

	_, err = ParseMode("kafka")
	assert.Error(t, err)
}

func TestDatasetEventTopic(t *testing.T) {
	assert.Equal(t, "Queens", DatasetEvent{Borough: "Queens"}.GetTopic())
}

func TestSubscribeProcessor(t *testing.T) {
	sub := newFakeSubscriber()
	out := make(chan int)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := SubscribeProcessor(ctx, "Bronx", sub, func(e DatasetEvent) (int, bool, error) {
		if e.RecordCount < 0 {
			return 0, false, errors.New("negative count")
		}
		return e.RecordCount, e.RecordCount == 0, nil
	}, out)
	require.NoError(t, err)
	assert.Equal(t, "Bronx", sub.topic)

	sub.ch <- DatasetEvent{RecordCount: -1}
	sub.ch <- DatasetEvent{RecordCount: 0}
	sub.ch <- DatasetEvent{RecordCount: 7}

	select {
	case got := <-out:
		assert.Equal(t, 7, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for processed message")
	}

	close(sub.ch)
	select {
	case <-sub.desubscribed:
	case <-time.After(time.Second):
		t.Fatal("processor did not de-subscribe")
	}
	_, ok := <-out
	assert.False(t, ok)
}

func TestSubscribeProcessorSubscribeError(t *testing.T) {
	sub := newFakeSubscriber()
	sub.err = errors.New("broker down")
	out := make(chan DatasetEvent)

	err := SubscribeProcessor(context.Background(), "", sub, func(e DatasetEvent) (DatasetEvent, bool, error) {
		return e, false, nil
	}, out)
	assert.ErrorContains(t, err, "broker down")
}

func TestSubscribeProcessorContextCancel(t *testing.T) {
	sub := newFakeSubscriber()
	out := make(chan DatasetEvent)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, SubscribeProcessor(ctx, "", sub, func(e DatasetEvent) (DatasetEvent, bool, error) {
		return e, false, nil
	}, out))
	cancel()

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("output stream was not closed after cancel")
	}
	select {
	case <-sub.desubscribed:
	case <-time.After(time.Second):
		t.Fatal("processor did not de-subscribe")
	}
}
