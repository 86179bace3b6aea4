package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"nyctaxi/mq/mq"
	"nyctaxi/taxi"
)

const (
	exchangeName     = "taxi_dataset_exchange"
	routingKeyPrefix = "dataset."
)

// RoutingKey is the key a borough's events are published with, e.g. "dataset.staten_island".
func RoutingKey(borough string) string {
	return routingKeyPrefix + taxi.Slug(borough)
}

// bindingKey matches one borough, or every borough when empty.
func bindingKey(borough string) string {
	if borough == "" {
		return routingKeyPrefix + "#"
	}
	return RoutingKey(borough)
}

type consumer struct {
	channel *amqp.Channel
	done    chan struct{}
}

// DatasetQueue is an mq.DatasetQueue on a RabbitMQ topic exchange. Every
// subscriber gets its own exclusive, auto-deleted queue on its own channel.
type DatasetQueue struct {
	conn      *amqp.Connection
	channel   *amqp.Channel // publishing
	publishMu sync.Mutex
	mu        sync.Mutex // protects consumers
	consumers map[uuid.UUID]*consumer
}

func NewDatasetQueue(conn *amqp.Connection) (*DatasetQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		return nil, err
	}
	return &DatasetQueue{
		conn:      conn,
		channel:   ch,
		consumers: make(map[uuid.UUID]*consumer),
	}, nil
}

func (q *DatasetQueue) Publish(msg mq.DatasetEvent) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q.publishMu.Lock()
	defer q.publishMu.Unlock()
	err = q.channel.PublishWithContext(ctx,
		exchangeName,               // exchange
		RoutingKey(msg.GetTopic()), // routing key
		false,                      // mandatory
		false,                      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   msg.GeneratedAt,
			MessageId:   msg.ID.String(),
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (q *DatasetQueue) Subscribe(borough string) (uuid.UUID, <-chan mq.DatasetEvent, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	deliveries, err := declareConsumer(ch, bindingKey(borough))
	if err != nil {
		ch.Close()
		return uuid.Nil, nil, err
	}

	subscriberID := uuid.New()
	c := &consumer{channel: ch, done: make(chan struct{})}
	outputChan := make(chan mq.DatasetEvent)

	q.mu.Lock()
	q.consumers[subscriberID] = c
	q.mu.Unlock()

	go func() {
		defer close(outputChan)
		for d := range deliveries {
			var msg mq.DatasetEvent
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("Failed to unmarshal DatasetEvent: %v", err)
				continue
			}
			select {
			case outputChan <- msg:
			case <-time.After(1 * time.Second):
				log.Printf("Timeout sending DatasetEvent to consumer %s. Skipping.", subscriberID)
			case <-c.done:
				return
			}
		}
	}()

	return subscriberID, outputChan, nil
}

func declareConsumer(ch *amqp.Channel, key string) (<-chan amqp.Delivery, error) {
	if err := DeclareExchange(ch); err != nil {
		return nil, err
	}
	queue, err := ch.QueueDeclare(
		"",    // name, server generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(queue.Name, key, exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue %s to %s: %w", queue.Name, key, err)
	}
	msgs, err := ch.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}
	return msgs, nil
}

// DeSubscribe closes the subscriber's channel; its queue is deleted by the broker.
func (q *DatasetQueue) DeSubscribe(subscriberID uuid.UUID) error {
	q.mu.Lock()
	c, ok := q.consumers[subscriberID]
	delete(q.consumers, subscriberID)
	q.mu.Unlock()

	if !ok {
		return fmt.Errorf("consumer with ID %s not found", subscriberID)
	}
	close(c.done)
	if err := c.channel.Close(); err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("failed to close consumer channel: %w", err)
	}
	return nil
}

// Close stops every consumer and closes the connection.
func (q *DatasetQueue) Close() {
	q.mu.Lock()
	ids := make([]uuid.UUID, 0, len(q.consumers))
	for id := range q.consumers {
		ids = append(ids, id)
	}
	q.mu.Unlock()

	for _, id := range ids {
		if err := q.DeSubscribe(id); err != nil {
			log.Printf("Error closing consumer %s: %v", id, err)
		}
	}
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}

var _ mq.DatasetQueue = (*DatasetQueue)(nil)
