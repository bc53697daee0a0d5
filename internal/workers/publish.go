package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hwmonitor/internal/tree"
)

type Snapshotter interface {
	Snapshot() *tree.Node
}

// Sink receives one encoded Envelope per publish run.
type Sink interface {
	Name() string
	Publish(ctx context.Context, payload []byte) error
}

type Envelope struct {
	InstanceID uuid.UUID  `json:"instance_id"`
	Hostname   string     `json:"hostname"`
	RecordedAt time.Time  `json:"recorded_at"`
	Tree       *tree.Node `json:"tree"`
}

type SnapshotPublishWorker struct {
	source     Snapshotter
	sinks      []Sink
	instanceID uuid.UUID
	hostname   string
	now        func() time.Time
}

func NewSnapshotPublishWorker(source Snapshotter, sinks []Sink, instanceID uuid.UUID, hostname string) *SnapshotPublishWorker {
	return &SnapshotPublishWorker{
		source:     source,
		sinks:      sinks,
		instanceID: instanceID,
		hostname:   hostname,
		now:        time.Now,
	}
}

func (w *SnapshotPublishWorker) Name() string {
	return "snapshot_publish"
}

// Run encodes one snapshot and hands it to every sink. A failing sink does
// not stop the others.
func (w *SnapshotPublishWorker) Run(ctx context.Context) error {
	env := Envelope{
		InstanceID: w.instanceID,
		Hostname:   w.hostname,
		RecordedAt: w.now().UTC(),
		Tree:       w.source.Snapshot(),
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode snapshot envelope: %w", err)
	}

	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Publish(ctx, payload); err != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
		}
	}

	return errors.Join(errs...)
}
