package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/bigyambat/BioStream/editor"
)

const topicPrefix = "biostream.project."

func topic(projectID string) string { return topicPrefix + projectID }

// Envelope is an editor event as streamed to clients. Seq increases by one
// per event of the same project; a gap means events were dropped and the
// client should refetch the project.
type Envelope struct {
	Seq uint64 `json:"seq"`
	editor.Event
	At time.Time `json:"at"`
}

// Events fans editor change events out to stream subscribers over an
// in-process watermill pub/sub.
type Events struct {
	pubsub  *gochannel.GoChannel
	buffer  int
	log     *zap.Logger
	metrics *Metrics

	mu  sync.Mutex
	seq map[string]uint64
}

// NewEvents returns an event bus. buffer is the queue length per
// subscriber.
func NewEvents(buffer int, log *zap.Logger, metrics *Metrics) *Events {
	if buffer <= 0 {
		buffer = 64
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Events{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: int64(buffer),
				Persistent:          false,
				// Each subscriber acks on receipt, so blocking keeps events
				// in order without stalling the publisher.
				BlockPublishUntilSubscriberAck: true,
			},
			zapAdapter{log.Named("watermill")},
		),
		buffer:  buffer,
		log:     log,
		metrics: metrics,
		seq:     make(map[string]uint64),
	}
}

// Publish stamps ev with the next sequence number of its project and
// broadcasts it.
func (e *Events) Publish(ev editor.Event) error {
	e.mu.Lock()
	e.seq[ev.ProjectID]++
	env := Envelope{Seq: e.seq[ev.ProjectID], Event: ev, At: time.Now().UTC()}
	e.mu.Unlock()

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("server: encode event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("kind", string(ev.Kind))
	msg.Metadata.Set("project_id", ev.ProjectID)
	if err := e.pubsub.Publish(topic(ev.ProjectID), msg); err != nil {
		return fmt.Errorf("server: publish event: %w", err)
	}
	return nil
}

// Forget drops the sequence counter of a closed project.
func (e *Events) Forget(projectID string) {
	e.mu.Lock()
	delete(e.seq, projectID)
	e.mu.Unlock()
}

// Subscribe streams the events of one project until ctx is cancelled or
// the bus is closed. A subscriber that falls more than the buffer behind
// loses events.
func (e *Events) Subscribe(ctx context.Context, projectID string) (<-chan Envelope, error) {
	msgs, err := e.pubsub.Subscribe(ctx, topic(projectID))
	if err != nil {
		return nil, fmt.Errorf("server: subscribe: %w", err)
	}
	out := make(chan Envelope, e.buffer)
	go func() {
		defer close(out)
		for msg := range msgs {
			msg.Ack()
			var env Envelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				e.log.Warn("undecodable event", zap.String("message", msg.UUID), zap.Error(err))
				continue
			}
			select {
			case out <- env:
			default:
				e.metrics.eventDropped()
				e.log.Debug("event dropped", zap.String("project", projectID), zap.Uint64("seq", env.Seq))
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down; every subscription channel is closed.
func (e *Events) Close() error {
	return e.pubsub.Close()
}

// zapAdapter implements watermill.LoggerAdapter on zap.
type zapAdapter struct {
	log *zap.Logger
}

func (a zapAdapter) fields(f watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (a zapAdapter) Error(msg string, err error, f watermill.LogFields) {
	a.log.Error(msg, append(a.fields(f), zap.Error(err))...)
}

func (a zapAdapter) Info(msg string, f watermill.LogFields) {
	a.log.Info(msg, a.fields(f)...)
}

func (a zapAdapter) Debug(msg string, f watermill.LogFields) {
	a.log.Debug(msg, a.fields(f)...)
}

// Trace is below zap's lowest level and maps to debug.
func (a zapAdapter) Trace(msg string, f watermill.LogFields) {
	a.log.Debug(msg, a.fields(f)...)
}

func (a zapAdapter) With(f watermill.LogFields) watermill.LoggerAdapter {
	return zapAdapter{a.log.With(a.fields(f)...)}
}
