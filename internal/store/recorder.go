package store

import (
	"context"
	"image"

	"github.com/google/uuid"
	"github.com/ironsheep/marker-score/internal/detection"
)

// Recorder is a sink that writes every tick of one session to a Store.
type Recorder struct {
	ctx     context.Context
	store   *Store
	session uuid.UUID
	next    int
}

// NewRecorder records ticks for session. ctx bounds every database call.
func NewRecorder(ctx context.Context, store *Store, session uuid.UUID) *Recorder {
	return &Recorder{ctx: ctx, store: store, session: session}
}

// Session returns the session being recorded.
func (r *Recorder) Session() uuid.UUID {
	return r.session
}

// Publish implements sink.Sink.
func (r *Recorder) Publish(_ *image.RGBA, tick detection.Tick) error {
	index := r.next
	r.next++
	return r.store.RecordTick(r.ctx, r.session, index, tick)
}

// Close marks the session finished. It does not close the Store.
func (r *Recorder) Close() error {
	return r.store.EndSession(context.WithoutCancel(r.ctx), r.session)
}
