package goch

import (
	"github.com/google/uuid"

	"nyctaxi/mq/mq"
)

// DatasetQueue is an in-process mq.DatasetQueue backed by Go channels.
type DatasetQueue struct {
	core *fanOutQueueCore[mq.DatasetEvent]
}

// NewDatasetQueue creates a queue. bufferSize sizes both the publish buffer and
// each subscriber channel; 0 means unbuffered.
func NewDatasetQueue(bufferSize int) *DatasetQueue {
	return &DatasetQueue{core: newFanOutQueueCore[mq.DatasetEvent](bufferSize)}
}

func (q *DatasetQueue) Publish(msg mq.DatasetEvent) error {
	return q.core.Publish(msg)
}

func (q *DatasetQueue) Subscribe(borough string) (uuid.UUID, <-chan mq.DatasetEvent, error) {
	return q.core.Subscribe(borough)
}

func (q *DatasetQueue) DeSubscribe(id uuid.UUID) error {
	return q.core.DeSubscribe(id)
}

func (q *DatasetQueue) Close() {
	q.core.Stop()
}

var _ mq.DatasetQueue = (*DatasetQueue)(nil)
