package cmd

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"nyctaxi/config"
	"nyctaxi/export"
	"nyctaxi/mq/mq"
)

// localDrainTimeout bounds how long Close waits for in-process events to be logged.
const localDrainTimeout = 2 * time.Second

// notifier publishes a DatasetEvent per written dataset. With mq.ModeGoChan the
// events never leave the process, so the notifier also subscribes and logs them.
type notifier struct {
	queue   mq.DatasetQueue
	cancel  context.CancelFunc
	pending sync.WaitGroup
	local   bool
	done    chan struct{} // closed when the local logger exits
}

func newNotifier(ctx context.Context, mode mq.Mode, cfg config.Config) (*notifier, error) {
	queue, err := openQueue(ctx, mode, cfg)
	if err != nil {
		return nil, err
	}
	n := &notifier{queue: queue, cancel: func() {}}
	if queue == nil || mode != mq.ModeGoChan {
		return n, nil
	}

	ctx, n.cancel = context.WithCancel(ctx)
	out := make(chan string)
	err = mq.SubscribeProcessor(ctx, "", queue, func(e mq.DatasetEvent) (string, bool, error) {
		return describeEvent(e), false, nil
	}, out)
	if err != nil {
		n.cancel()
		queue.Close()
		return nil, err
	}
	n.local = true
	n.done = make(chan struct{})
	go func() {
		defer close(n.done)
		for line := range out {
			log.Print(line)
			n.pending.Done()
		}
	}()
	return n, nil
}

func (n *notifier) Notify(borough string, res export.Result) {
	if n == nil || n.queue == nil {
		return
	}
	event := mq.DatasetEvent{
		ID:          uuid.New(),
		Borough:     borough,
		Sink:        res.Type,
		Path:        res.Path,
		RecordCount: res.RecordCount,
		GeneratedAt: res.ExportedAt,
	}
	if n.local {
		n.pending.Add(1)
	}
	if err := n.queue.Publish(event); err != nil {
		if n.local {
			n.pending.Done()
		}
		log.Printf("Failed to publish dataset event for %s: %v", borough, err)
	}
}

func (n *notifier) Close() {
	if n == nil || n.queue == nil {
		return
	}
	if n.local {
		drained := make(chan struct{})
		go func() {
			n.pending.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-time.After(localDrainTimeout):
			log.Printf("Timed out waiting for dataset events to be delivered")
		}
	}
	n.cancel()
	if n.local {
		<-n.done
	}
	n.queue.Close()
}

func describeEvent(e mq.DatasetEvent) string {
	return fmt.Sprintf("Dataset ready: %s, %d records in %s %s (%s)",
		e.Borough, e.RecordCount, e.Sink, e.Path, e.GeneratedAt.Format(time.RFC3339))
}
