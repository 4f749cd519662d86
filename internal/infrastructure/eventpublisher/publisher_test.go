package eventpublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &fakeOutbox{events: []*domain.OutboxEvent{
		{ID: "evt-1", EventType: domain.EventTypeInvestmentConfirmed, AggregateID: "inv-1"},
	}}
	sink := &fakeSink{}
	ep := newTestPublisher(repo, sink)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(sink.published) != 1 || sink.published[0].ID != "evt-1" {
		t.Fatalf("expected evt-1 published, got %#v", sink.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected evt-1 marked published, got %#v", repo.marked)
	}
}

func TestProcessEventsLeavesFailedEventUnmarked(t *testing.T) {
	repo := &fakeOutbox{events: []*domain.OutboxEvent{
		{ID: "evt-1", EventType: domain.EventTypePropertyFunded},
		{ID: "evt-2", EventType: domain.EventTypeInvestmentConfirmed},
	}}
	sink := &fakeSink{failIDs: map[string]error{"evt-1": errors.New("stream unavailable")}}
	ep := newTestPublisher(repo, sink)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	// evt-1 stays unpublished for the next poll; evt-2 still went out.
	if len(sink.published) != 1 || sink.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", sink.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
}

func TestProcessEventsNoopOnEmptyOutbox(t *testing.T) {
	repo := &fakeOutbox{}
	sink := &fakeSink{}
	ep := newTestPublisher(repo, sink)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}
	if len(sink.published) != 0 {
		t.Fatalf("expected nothing published, got %#v", sink.published)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	ep := newTestPublisher(&fakeOutbox{}, &fakeSink{})
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func newTestPublisher(repo *fakeOutbox, sink *fakeSink) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  sink,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type fakeOutbox struct {
	events []*domain.OutboxEvent
	marked []string
}

func (f *fakeOutbox) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (f *fakeOutbox) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if len(f.events) > limit {
		return append([]*domain.OutboxEvent(nil), f.events[:limit]...), nil
	}
	return append([]*domain.OutboxEvent(nil), f.events...), nil
}

func (f *fakeOutbox) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeOutbox) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}

type fakeSink struct {
	published []*domain.OutboxEvent
	failIDs   map[string]error
}

func (f *fakeSink) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := f.failIDs[event.ID]; err != nil {
		return err
	}
	f.published = append(f.published, event)
	return nil
}
