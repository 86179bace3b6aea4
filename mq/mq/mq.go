package mq

import "github.com/google/uuid"

// TopicProvider is implemented by messages that carry their own routing topic.
type TopicProvider interface {
	GetTopic() string
}

// DatasetQueue carries DatasetEvents between the generator and its watchers.
// Subscribing with an empty borough receives events for every borough.
type DatasetQueue interface {
	Publish(msg DatasetEvent) error
	Subscribe(borough string) (uuid.UUID, <-chan DatasetEvent, error)
	DeSubscribe(id uuid.UUID) error
	Close()
}
