package eventbus

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	evt := event.New(event.PayrollRunProcessed, "company-1", map[string]any{"payslip_count": float64(3)})

	data, err := encode(evt)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"payroll_run.processed"`)

	got, err := decode(data)
	require.NoError(t, err)
	assert.Equal(t, evt.Name, got.Name)
	assert.Equal(t, evt.CompanyID, got.CompanyID)
	assert.Equal(t, float64(3), got.Payload["payslip_count"])
	assert.True(t, evt.OccurredAt.Equal(got.OccurredAt))

	_, err = decode([]byte("not json"))
	assert.Error(t, err)
}

func TestSSEPublisher_RoutesByCompany(t *testing.T) {
	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe("company-1")
	defer cleanup()

	p := NewSSEPublisher(hub)
	require.NoError(t, p.Publish(context.Background(), event.New(event.AttendanceClockIn, "company-1", nil)))
	require.NoError(t, p.Publish(context.Background(), event.New(event.AttendanceClockIn, "company-2", nil)))

	require.Len(t, ch, 1)
	got := <-ch
	assert.Equal(t, "attendance.clock_in", got.Event)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), event.New(event.LeaveRequestCreated, "company-1", nil)))
	assert.Contains(t, buf.String(), "leave_request.created")
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, event.Event) error { return f.err }

func TestFanout_PublishesToAllAndReturnsFirstError(t *testing.T) {
	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe("company-1")
	defer cleanup()

	boom := errors.New("boom")
	f := Fanout{failingPublisher{err: boom}, NewSSEPublisher(hub)}

	err := f.Publish(context.Background(), event.New(event.PayslipGenerated, "company-1", nil))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ch, 1)
}

func TestRedisPublisher_RelaysToHub(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := NewRedisClient(ctx, RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe("company-1")
	defer cleanup()

	channel := "hr-events-test"
	go Relay(ctx, client, channel, hub)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, NewRedisPublisher(client, channel).Publish(ctx, event.New(event.PayrollRunPaid, "company-1", nil)))

	select {
	case got := <-ch:
		assert.Equal(t, "payroll_run.paid", got.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not relayed")
	}
}
