package eventbus

import (
	"context"

	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/sse"
)

// SSEPublisher delivers events to the in-process hub, one topic per company.
type SSEPublisher struct {
	hub *sse.Hub
}

func NewSSEPublisher(hub *sse.Hub) *SSEPublisher {
	return &SSEPublisher{hub: hub}
}

func (p *SSEPublisher) Publish(ctx context.Context, evt event.Event) error {
	p.hub.Publish(evt.CompanyID, sse.Event{Event: string(evt.Name), Data: evt})
	return nil
}
