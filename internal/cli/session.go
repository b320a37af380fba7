package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ironsheep/marker-score/internal/config"
	"github.com/ironsheep/marker-score/internal/runner"
	"github.com/ironsheep/marker-score/internal/sink"
	"github.com/ironsheep/marker-score/internal/store"
	"github.com/ironsheep/marker-score/internal/web"
)

// outputs holds the optional sinks a tick session publishes to, besides
// the ones a command adds itself.
type outputs struct {
	sinks []sink.Sink
	db    *store.Store
}

// openOutputs starts whichever of the dashboard, tick log and snapshot writer
// cfg enables. sourceName labels the tick-log session.
func openOutputs(ctx context.Context, cfg *config.Config, sourceName string) (*outputs, error) {
	o := &outputs{}

	var dash *web.Server
	if cfg.Dashboard.Addr != "" {
		dash = web.New(cfg.Dashboard.Addr, cfg)
		dash.StartAsync()
		o.sinks = append(o.sinks, dash)
	}

	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			o.Close()
			return nil, err
		}
		o.db = db

		session, err := db.StartSession(ctx, sourceName, cfg.Detection)
		if err != nil {
			o.Close()
			return nil, err
		}
		log.Printf("Recording session %s", session)
		if dash != nil {
			dash.SetSession(session.String())
		}
		o.sinks = append(o.sinks, store.NewRecorder(ctx, db, session))
	}

	if cfg.Snapshots.Dir != "" {
		snaps, err := sink.NewSnapshotWriter(cfg.Snapshots.Dir, cfg.Snapshots.Every)
		if err != nil {
			o.Close()
			return nil, err
		}
		o.sinks = append(o.sinks, snaps)
	}

	return o, nil
}

// Close closes every sink, then the database.
func (o *outputs) Close() {
	for _, s := range o.sinks {
		if err := s.Close(); err != nil {
			log.Printf("Failed to close output: %v", err)
		}
	}
	if o.db != nil {
		o.db.Close(context.Background())
	}
}

// summary formats the end-of-session line.
func summary(stats runner.Stats) string {
	return fmt.Sprintf("Processed %d frames in %v (last score %d, max score %d)",
		stats.Ticks, stats.Elapsed.Round(time.Millisecond), stats.LastScore, stats.MaxScore)
}
