package mq

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeNone      Mode = "none"
	ModeGoChan    Mode = "go_chan"
	ModeRabbitMQ  Mode = "rabbitmq"
	ModeGCPPubSub Mode = "gcp_pub_sub"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeGoChan, ModeRabbitMQ, ModeGCPPubSub:
		return m, nil
	case "":
		return ModeNone, nil
	default:
		return "", fmt.Errorf("unknown notify mode %q (want none, go_chan, rabbitmq or gcp_pub_sub)", s)
	}
}

// DatasetEvent announces that a dataset was written to a sink.
type DatasetEvent struct {
	ID          uuid.UUID `json:"id"`
	Borough     string    `json:"borough"`
	Sink        string    `json:"sink"`
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (e DatasetEvent) GetTopic() string {
	return e.Borough
}
