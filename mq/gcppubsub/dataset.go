package gcppubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"

	"nyctaxi/mq/mq"
)

const DatasetTopicID = "dataset-generated"

// DatasetQueue is an mq.DatasetQueue on GCP Pub/Sub.
type DatasetQueue struct {
	client         *pubsub.Client
	genericService *GenericPubSubService[mq.DatasetEvent]
}

// NewDatasetQueue connects to projectID, or to GetGCPProjectID when it is empty.
func NewDatasetQueue(ctx context.Context, projectID string) (*DatasetQueue, error) {
	if projectID == "" {
		projectID = GetGCPProjectID()
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Pub/Sub client for project %s: %w", projectID, err)
	}
	gs, err := NewGenericPubSubService[mq.DatasetEvent](ctx, client, DatasetTopicID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create generic service for DatasetEvent: %w", err)
	}
	return &DatasetQueue{client: client, genericService: gs}, nil
}

func (q *DatasetQueue) Publish(msg mq.DatasetEvent) error { return q.genericService.Publish(msg) }
func (q *DatasetQueue) Subscribe(borough string) (uuid.UUID, <-chan mq.DatasetEvent, error) {
	return q.genericService.Subscribe(borough)
}
func (q *DatasetQueue) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

func (q *DatasetQueue) Close() {
	q.genericService.Close()
	q.client.Close()
}

var _ mq.DatasetQueue = (*DatasetQueue)(nil)
