// Package adapters connects the state store to outbound integrations.
package adapters

import (
	"context"

	"cctracker/internal/amqp"
	"cctracker/internal/log"
	"cctracker/internal/state"
)

// SnapshotPublisher is satisfied by *amqp.Client.
type SnapshotPublisher interface {
	PublishSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error
}

// ChangePublisher announces persisted snapshot revisions. Publishing is best
// effort: failures are logged and never affect the update that triggered them.
type ChangePublisher struct {
	publisher SnapshotPublisher
	logger    *log.Logger
}

func NewChangePublisher(publisher SnapshotPublisher, logger *log.Logger) *ChangePublisher {
	return &ChangePublisher{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentAMQP),
	}
}

// Listener returns the state.Listener to register with Store.OnChange.
func (p *ChangePublisher) Listener() state.Listener {
	return p.onChange
}

func (p *ChangePublisher) onChange(ctx context.Context, c state.Change) {
	if !c.Persisted() {
		p.logger.DebugContext(ctx, "Skipping notification for unpersisted revision",
			log.FieldRevision, c.Revision)
		return
	}
	msg := amqp.NewSnapshotSavedMessage(c.Key, c.Revision, len(c.Snapshot.Cards), len(c.Snapshot.Entries))
	if err := p.publisher.PublishSnapshotSaved(ctx, msg); err != nil {
		p.logger.WarnContext(ctx, "Failed to publish snapshot notification",
			log.FieldKey, c.Key, log.FieldRevision, c.Revision, log.FieldError, err)
		return
	}
	p.logger.DebugContext(ctx, "Published snapshot notification",
		log.FieldKey, c.Key, log.FieldRevision, c.Revision)
}
