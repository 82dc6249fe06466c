package adapters

import (
	"context"
	"errors"
	"testing"

	"cctracker/internal/amqp"
	"cctracker/internal/log"
	"cctracker/internal/state"
	"cctracker/internal/storage"
)

type recordingPublisher struct {
	msgs []*amqp.SnapshotSavedMessage
	err  error
}

func (r *recordingPublisher) PublishSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

type failingBlobs struct{ storage.BlobStore }

func (failingBlobs) Set(ctx context.Context, key string, data []byte) error {
	return errors.New("disk full")
}

func TestChangePublisherPublishesPersistedRevisions(t *testing.T) {
	ctx := context.Background()
	s, err := state.Open(ctx, storage.NewMemoryStore(), state.WithLogger(log.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	pub := &recordingPublisher{}
	s.OnChange(NewChangePublisher(pub, log.Discard()).Listener())

	dark := s.Snapshot().Theme.Toggle()
	if _, err := s.Apply(ctx, state.Patch{Theme: &dark}); err != nil {
		t.Fatal(err)
	}

	if len(pub.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.Key != storage.DefaultKey || msg.Revision != 1 || msg.Cards != 1 || msg.Entries != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestChangePublisherErrorsDoNotFailUpdates(t *testing.T) {
	ctx := context.Background()
	s, _ := state.Open(ctx, storage.NewMemoryStore(), state.WithLogger(log.Discard()))
	s.OnChange(NewChangePublisher(&recordingPublisher{err: errors.New("broker down")}, log.Discard()).Listener())

	dark := s.Snapshot().Theme.Toggle()
	if _, err := s.Apply(ctx, state.Patch{Theme: &dark}); err != nil {
		t.Fatalf("publish failure leaked into update: %v", err)
	}
}

func TestChangePublisherSkipsUnpersisted(t *testing.T) {
	ctx := context.Background()
	s, _ := state.Open(ctx, failingBlobs{storage.NewMemoryStore()}, state.WithLogger(log.Discard()))
	pub := &recordingPublisher{}
	s.OnChange(NewChangePublisher(pub, log.Discard()).Listener())

	dark := s.Snapshot().Theme.Toggle()
	_, _ = s.Apply(ctx, state.Patch{Theme: &dark})

	if len(pub.msgs) != 0 {
		t.Fatalf("unpersisted revision was announced: %+v", pub.msgs)
	}
}
