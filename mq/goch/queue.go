package goch

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"nyctaxi/mq/mq"
)

// subscriberSendTimeout is how long a delivery may block before the
// subscriber is dropped and its channel closed.
const subscriberSendTimeout = 100 * time.Millisecond

type subscriber[T any] struct {
	topic string
	ch    chan T
}

// fanOutQueueCore delivers every published item to each subscriber whose topic
// matches the item's topic. An empty subscriber topic matches everything.
type fanOutQueueCore[T mq.TopicProvider] struct {
	publishChan chan T
	subscribers map[uuid.UUID]subscriber[T]
	mu          sync.RWMutex
	quit        chan struct{}
	wg          sync.WaitGroup
	bufferSize  int
	stopOnce    sync.Once
}

func newFanOutQueueCore[T mq.TopicProvider](bufferSize int) *fanOutQueueCore[T] {
	if bufferSize < 0 {
		bufferSize = 0
	}
	q := &fanOutQueueCore[T]{
		publishChan: make(chan T, bufferSize),
		subscribers: make(map[uuid.UUID]subscriber[T]),
		quit:        make(chan struct{}),
		bufferSize:  bufferSize,
	}
	q.wg.Add(1)
	go q.fanOutRoutine()
	return q
}

func (q *fanOutQueueCore[T]) fanOutRoutine() {
	defer q.wg.Done()
	for {
		select {
		case item := <-q.publishChan:
			q.deliver(item)
		case <-q.quit:
			return
		}
	}
}

func (q *fanOutQueueCore[T]) deliver(item T) {
	topic := item.GetTopic()

	// the read lock is held while sending so DeSubscribe cannot close a
	// channel mid-send
	var slow []uuid.UUID
	q.mu.RLock()
	for id, sub := range q.subscribers {
		if sub.topic != "" && sub.topic != topic {
			continue
		}
		select {
		case sub.ch <- item:
		case <-time.After(subscriberSendTimeout):
			slow = append(slow, id)
		case <-q.quit:
			q.mu.RUnlock()
			return
		}
	}
	q.mu.RUnlock()

	for _, id := range slow {
		log.Printf("Subscriber %s is not draining its channel, removing it", id)
		q.remove(id)
	}
}

// Publish hands the item to the fan-out routine without blocking.
func (q *fanOutQueueCore[T]) Publish(item T) error {
	select {
	case <-q.quit:
		return ErrQueueStopped
	default:
	}
	select {
	case q.publishChan <- item:
		return nil
	case <-q.quit:
		return ErrQueueStopped
	default:
		return ErrQueueFull
	}
}

func (q *fanOutQueueCore[T]) Subscribe(topic string) (uuid.UUID, <-chan T, error) {
	select {
	case <-q.quit:
		return uuid.Nil, nil, ErrQueueStopped
	default:
	}

	id := uuid.New()
	ch := make(chan T, q.bufferSize)

	q.mu.Lock()
	q.subscribers[id] = subscriber[T]{topic: topic, ch: ch}
	q.mu.Unlock()
	return id, ch, nil
}

func (q *fanOutQueueCore[T]) DeSubscribe(id uuid.UUID) error {
	if !q.remove(id) {
		return ErrSubscriberNotFound
	}
	return nil
}

func (q *fanOutQueueCore[T]) remove(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	sub, ok := q.subscribers[id]
	if !ok {
		return false
	}
	delete(q.subscribers, id)
	close(sub.ch)
	return true
}

// Stop ends the fan-out routine and closes every subscriber channel. Safe to
// call more than once.
func (q *fanOutQueueCore[T]) Stop() {
	q.stopOnce.Do(func() {
		close(q.quit)
		q.wg.Wait()

		q.mu.Lock()
		defer q.mu.Unlock()
		for id, sub := range q.subscribers {
			close(sub.ch)
			delete(q.subscribers, id)
		}
	})
}

// --- Error Definitions ---
type QueueError string

func (e QueueError) Error() string {
	return string(e)
}

const (
	ErrQueueFull          QueueError = "message queue is full"
	ErrQueueStopped       QueueError = "message queue is stopped"
	ErrSubscriberNotFound QueueError = "subscriber not found"
)
