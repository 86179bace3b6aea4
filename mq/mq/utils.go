package mq

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Subscriber is anything that hands out a message channel per topic.
type Subscriber[M any] interface {
	Subscribe(topic string) (uuid.UUID, <-chan M, error)
	DeSubscribe(id uuid.UUID) error
}

// SubscribeProcessor subscribes to topic and forwards transformed messages to
// outputStream from a goroutine until ctx is done or the input closes. The
// goroutine de-subscribes and closes outputStream on exit. Messages for which
// transformFunc reports skip or an error are dropped.
func SubscribeProcessor[S Subscriber[M], M any, O any](
	ctx context.Context,
	topic string,
	service S,
	transformFunc func(msg M) (O, bool, error),
	outputStream chan<- O,
) error {
	uid, inputCh, err := service.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %q: %w", topic, err)
	}

	go func() {
		defer func() {
			if err := service.DeSubscribe(uid); err != nil {
				log.Printf("Error de-subscribing %s: %v", uid, err)
			}
			close(outputStream)
		}()

		for {
			select {
			case msg, ok := <-inputCh:
				if !ok {
					return
				}

				output, skip, err := transformFunc(msg)
				if err != nil {
					log.Printf("Error transforming message for %s: %v", uid, err)
					continue
				}
				if skip {
					continue
				}

				select {
				case outputStream <- output:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
