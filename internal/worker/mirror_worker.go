package worker

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"cctracker/internal/amqp"
	"cctracker/internal/core"
	"cctracker/internal/log"
	"cctracker/internal/sheets"
	"cctracker/internal/state"
	"cctracker/internal/storage"
)

// MirrorWorker copies the stored snapshot into a SnapshotMirror. It is
// driven by snapshot saved messages and by a periodic resync that covers
// lost messages.
type MirrorWorker struct {
	blobs  storage.BlobStore
	key    string
	mirror sheets.SnapshotMirror
	logger *log.Logger
	now    func() time.Time

	mu       sync.Mutex
	lastHash [sha256.Size]byte
	mirrored bool
}

type Option func(*MirrorWorker)

func WithClock(now func() time.Time) Option {
	return func(w *MirrorWorker) { w.now = now }
}

func NewMirrorWorker(blobs storage.BlobStore, key string, mirror sheets.SnapshotMirror, logger *log.Logger, opts ...Option) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	w := &MirrorWorker{
		blobs:  blobs,
		key:    key,
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleSnapshotSaved processes one notification. Messages for other keys
// are acknowledged without work.
func (w *MirrorWorker) HandleSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	if msg.Key != w.key {
		w.logger.DebugContext(ctx, "Ignoring snapshot for another key",
			log.FieldKey, msg.Key)
		return nil
	}
	w.logger.InfoContext(ctx, "Processing snapshot saved message",
		log.FieldKey, msg.Key,
		log.FieldRevision, msg.Revision)
	_, err := w.sync(ctx)
	return err
}

// Resync mirrors the stored snapshot if it changed since the last mirror.
// It reports whether a mirror was written.
func (w *MirrorWorker) Resync(ctx context.Context) (bool, error) {
	return w.sync(ctx)
}

// Run resyncs every interval until ctx is cancelled. Failures are logged and
// retried on the next tick.
func (w *MirrorWorker) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.sync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup resync failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Stopping periodic resync", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic resync failed", log.FieldError, err)
			}
		}
	}
}

func (w *MirrorWorker) sync(ctx context.Context) (bool, error) {
	data, err := w.blobs.Get(ctx, w.key)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.DebugContext(ctx, "No stored snapshot to mirror", log.FieldKey, w.key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	today := core.DateOf(w.now())
	// Metrics depend on today, so the date is part of the hash.
	hash := sha256.Sum256(append([]byte(today+"\n"), data...))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mirrored && hash == w.lastHash {
		return false, nil
	}

	snap, fixes, err := state.Decode(data, today)
	if err != nil {
		// Retrying cannot fix stored data; wait for the next save.
		w.logger.WarnContext(ctx, "Stored snapshot is unusable, skipping mirror",
			log.FieldKey, w.key, log.FieldError, err)
		return false, nil
	}
	if len(fixes) > 0 {
		w.logger.WarnContext(ctx, "Stored snapshot needed repairs", "fixes", fixes)
	}

	if err := w.mirror.Mirror(ctx, snap, today); err != nil {
		return false, fmt.Errorf("mirror snapshot: %w", err)
	}
	w.lastHash = hash
	w.mirrored = true

	w.logger.InfoContext(ctx, "Snapshot mirrored",
		log.FieldKey, w.key,
		log.FieldCards, len(snap.Cards),
		log.FieldEntries, len(snap.Entries))
	return true, nil
}
