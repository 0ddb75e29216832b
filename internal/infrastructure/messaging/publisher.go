package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/infrastructure/observability"
)

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// New creates the configured publisher.
func New(ctx context.Context, cfg config.Events, region string, logger *zap.Logger, metrics *observability.Collector) (Publisher, error) {
	switch cfg.Provider {
	case "eventbridge":
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return NewEventBridgePublisher(eventbridge.NewFromConfig(awsCfg), cfg.EventBusName, cfg.Source, logger, metrics), nil
	case "log":
		return NewLogPublisher(logger, metrics), nil
	default:
		return NoOpPublisher{}, nil
	}
}

// EventBridgeAPI is the part of the EventBridge client the publisher uses.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher publishes events to an EventBridge bus.
type EventBridgePublisher struct {
	client    EventBridgeAPI
	eventBus  string
	source    string
	batchSize int
	logger    *zap.Logger
	metrics   *observability.Collector
}

func NewEventBridgePublisher(client EventBridgeAPI, eventBus, source string, logger *zap.Logger, metrics *observability.Collector) *EventBridgePublisher {
	if eventBus == "" {
		eventBus = "default"
	}
	if source == "" {
		source = "hackverse.mindmap"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBridgePublisher{
		client:    client,
		eventBus:  eventBus,
		source:    source,
		batchSize: 10, // EventBridge has a limit of 10 entries per PutEvents call
		logger:    logger,
		metrics:   metrics,
	}
}

// Publish sends events in batches of at most ten.
func (p *EventBridgePublisher) Publish(ctx context.Context, events ...Event) error {
	for i := 0; i < len(events); i += p.batchSize {
		end := i + p.batchSize
		if end > len(events) {
			end = len(events)
		}
		batch := events[i:end]
		err := p.publishBatch(ctx, batch)
		for _, e := range batch {
			p.metrics.RecordEvent(e.Type, err)
		}
		if err != nil {
			return fmt.Errorf("failed to publish event batch: %w", err)
		}
	}
	return nil
}

func (p *EventBridgePublisher) publishBatch(ctx context.Context, events []Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(events))
	for _, event := range events {
		detail, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBus),
			Source:       aws.String(p.source),
			DetailType:   aws.String(event.Type),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.OccurredAt),
			Resources:    []string{event.ResourceID},
		})
	}

	output, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to put events: %w", err)
	}
	if output.FailedEntryCount > 0 {
		for i, entry := range output.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("EventBridge rejected event",
					zap.Int("index", i),
					zap.String("code", aws.ToString(entry.ErrorCode)),
					zap.String("message", aws.ToString(entry.ErrorMessage)))
			}
		}
		return fmt.Errorf("%d events failed to publish", output.FailedEntryCount)
	}

	p.logger.Debug("published events",
		zap.Int("count", len(entries)),
		zap.String("event_bus", p.eventBus))
	return nil
}

// LogPublisher writes events to the log.
type LogPublisher struct {
	logger  *zap.Logger
	metrics *observability.Collector
}

func NewLogPublisher(logger *zap.Logger, metrics *observability.Collector) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger.Named("events"), metrics: metrics}
}

func (p *LogPublisher) Publish(_ context.Context, events ...Event) error {
	for _, e := range events {
		p.logger.Info("domain event",
			zap.String("event_type", e.Type),
			zap.String("event_id", e.ID),
			zap.String("user_id", e.UserID),
			zap.String("resource_id", e.ResourceID),
			zap.Any("detail", e.Detail))
		p.metrics.RecordEvent(e.Type, nil)
	}
	return nil
}

// NoOpPublisher drops every event.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(context.Context, ...Event) error { return nil }

// AsyncPublisher queues events and publishes them from a background
// worker so request handlers never wait on the bus.
type AsyncPublisher struct {
	publisher Publisher
	queue     chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	once      sync.Once
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("event publisher is closed")

func NewAsyncPublisher(publisher Publisher, queueSize int, logger *zap.Logger) *AsyncPublisher {
	if queueSize <= 0 {
		queueSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &AsyncPublisher{
		publisher: publisher,
		queue:     make(chan Event, queueSize),
		done:      make(chan struct{}),
		logger:    logger,
	}
	p.wg.Add(1)
	go p.worker()
	return p
}

// Publish queues events. It fails when the queue is full or the publisher
// has been closed.
func (p *AsyncPublisher) Publish(ctx context.Context, events ...Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	for _, event := range events {
		select {
		case p.queue <- event:
		case <-ctx.Done():
			return ctx.Err()
		default:
			return fmt.Errorf("event queue is full")
		}
	}
	return nil
}

func (p *AsyncPublisher) worker() {
	defer p.wg.Done()
	batch := make([]Event, 0, 10)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.publisher.Publish(ctx, batch...); err != nil {
			p.logger.Error("Failed to publish events", zap.Int("count", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case event := <-p.queue:
			batch = append(batch, event)
			if len(batch) >= 10 {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-p.done:
			for {
				select {
				case event := <-p.queue:
					batch = append(batch, event)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close drains the queue and stops the worker.
func (p *AsyncPublisher) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
	})
	p.wg.Wait()
}
