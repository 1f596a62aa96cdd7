// Package eventbus provides the event.Publisher implementations selected by
// EVENT_BUS.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/goccy/go-json"
)

const (
	DriverNone  = "none"
	DriverLog   = "log"
	DriverSSE   = "sse"
	DriverRedis = "redis"
)

func encode(evt event.Event) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", evt.Name, err)
	}
	return data, nil
}

func decode(data []byte) (event.Event, error) {
	var evt event.Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return event.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return evt, nil
}

// LogPublisher writes every event to the application log.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, evt event.Event) error {
	p.logger.InfoContext(ctx, "Event published",
		"event", evt.Name,
		"company_id", evt.CompanyID,
		"payload", evt.Payload,
	)
	return nil
}

// Fanout publishes to every publisher and returns the first error.
type Fanout []event.Publisher

func (f Fanout) Publish(ctx context.Context, evt event.Event) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, evt); err != nil && first == nil {
			first = err
		}
	}
	return first
}
