package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"hackverse-mindmap/internal/infrastructure/observability"
)

type fakeEventBridge struct {
	mu     sync.Mutex
	calls  [][]types.PutEventsRequestEntry
	failed int32
	err    error
}

func (f *fakeEventBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, in.Entries)
	out := &eventbridge.PutEventsOutput{FailedEntryCount: f.failed}
	if f.failed > 0 {
		out.Entries = []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("nope")}}
	}
	return out, nil
}

func saved(n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = MindmapSaved("u1", "r1", i, i)
	}
	return events
}

func TestEventBridgePublisher_BatchesOfTen(t *testing.T) {
	fake := &fakeEventBridge{}
	metrics := observability.NewCollector("test")
	p := NewEventBridgePublisher(fake, "bus", "", zap.NewNop(), metrics)

	require.NoError(t, p.Publish(context.Background(), saved(23)...))

	require.Len(t, fake.calls, 3)
	assert.Len(t, fake.calls[0], 10)
	assert.Len(t, fake.calls[2], 3)
	entry := fake.calls[0][0]
	assert.Equal(t, "bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, "hackverse.mindmap", aws.ToString(entry.Source))
	assert.Equal(t, EventMindmapSaved, aws.ToString(entry.DetailType))

	var detail Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "r1", detail.ResourceID)
	assert.Equal(t, 23.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(EventMindmapSaved, "success")))
}

func TestEventBridgePublisher_Failures(t *testing.T) {
	t.Run("Should fail when entries are rejected", func(t *testing.T) {
		p := NewEventBridgePublisher(&fakeEventBridge{failed: 1}, "bus", "src", nil, nil)

		assert.Error(t, p.Publish(context.Background(), saved(1)...))
	})

	t.Run("Should fail when the call fails", func(t *testing.T) {
		p := NewEventBridgePublisher(&fakeEventBridge{err: errors.New("offline")}, "bus", "src", nil, nil)

		assert.ErrorContains(t, p.Publish(context.Background(), saved(1)...), "offline")
	})
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core), nil)

	require.NoError(t, p.Publish(context.Background(), MindmapGenerated("u1", "r1", true, 4, 3)))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, EventMindmapGenerated, entries[0].ContextMap()["event_type"])
}

func TestAsyncPublisher_FlushesOnClose(t *testing.T) {
	fake := &fakeEventBridge{}
	p := NewAsyncPublisher(NewEventBridgePublisher(fake, "bus", "src", nil, nil), 100, nil)

	require.NoError(t, p.Publish(context.Background(), saved(5)...))
	p.Close()

	total := 0
	for _, c := range fake.calls {
		total += len(c)
	}
	assert.Equal(t, 5, total)
}

func TestAsyncPublisher_RejectsAfterClose(t *testing.T) {
	fake := &fakeEventBridge{}
	p := NewAsyncPublisher(NewEventBridgePublisher(fake, "bus", "src", nil, nil), 100, nil)
	p.Close()

	err := p.Publish(context.Background(), saved(1)...)

	assert.ErrorIs(t, err, ErrPublisherClosed)
	assert.Empty(t, fake.calls)
	p.Close()
}

func TestAsyncPublisher_QueueFull(t *testing.T) {
	block := make(chan struct{})
	p := NewAsyncPublisher(blockingPublisher(block), 1, nil)
	defer func() {
		close(block)
		p.Close()
	}()

	var err error
	for i := 0; i < 50 && err == nil; i++ {
		err = p.Publish(context.Background(), saved(1)...)
	}

	assert.ErrorContains(t, err, "queue is full")
}

type blockingPublisher chan struct{}

func (b blockingPublisher) Publish(context.Context, ...Event) error {
	<-b
	return nil
}
