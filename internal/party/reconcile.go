package party

import (
	"fmt"
	"sync"

	"github.com/crossparty/server/internal/metrics"
	"github.com/crossparty/server/internal/player"
	roomsvc "github.com/crossparty/server/internal/service/room"
)

type appliedState struct {
	trackURL  string
	isPlaying bool
	revision  int64
}

// reconciler applies remote playback snapshots to the local engine.
// Shared by host and guest: both sides mirror writes made by other
// participants and suppress their own echoes.
type reconciler struct {
	session        *SessionContext
	engine         player.Engine
	driftThreshold int

	mu      sync.Mutex
	applied appliedState
}

func newReconciler(session *SessionContext, engine player.Engine) *reconciler {
	return &reconciler{
		session:        session,
		engine:         engine,
		driftThreshold: DriftThreshold,
	}
}

// apply reconciles the local engine to snap. It never reacts to the
// session's own writes and never applies a revision twice.
func (r *reconciler) apply(snap roomsvc.PlaybackState) error {
	if WriterId(snap.WriterId) == r.session.Writer {
		metrics.SnapshotsSuppressed.Inc()
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.Revision <= r.applied.revision {
		metrics.SnapshotsStale.Inc()
		return nil
	}

	trackURL := ""
	if snap.Track != nil {
		trackURL = snap.Track.URL
	}

	switch {
	case trackURL != "" && trackURL != r.applied.trackURL:
		if err := r.engine.Load(player.Track{
			Title:    snap.Track.Title,
			Artist:   snap.Track.Artist,
			Album:    snap.Track.Album,
			URL:      snap.Track.URL,
			ImageURL: snap.Track.ImageURL,
			Duration: snap.Track.Duration,
		}, snap.IsPlaying); err != nil {
			return fmt.Errorf("failed to load track: %w", err)
		}
	case snap.IsPlaying != r.applied.isPlaying:
		if snap.IsPlaying {
			if err := r.engine.Resume(); err != nil {
				return fmt.Errorf("failed to resume: %w", err)
			}
		} else {
			if err := r.engine.Pause(); err != nil {
				return fmt.Errorf("failed to pause: %w", err)
			}
		}
	}

	// Coarse drift correction only: track identity and the play flag
	// are mirrored exactly, position is corrected only past the
	// threshold.
	if drift := r.engine.Position() - snap.Position; drift > r.driftThreshold || drift < -r.driftThreshold {
		if err := r.engine.Seek(snap.Position); err != nil {
			return fmt.Errorf("failed to seek: %w", err)
		}
		metrics.Reseeks.Inc()
	}

	r.applied = appliedState{
		trackURL:  trackURL,
		isPlaying: snap.IsPlaying,
		revision:  snap.Revision,
	}

	return nil
}

func (r *reconciler) lastApplied() appliedState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.applied
}

func (r *reconciler) recordLocal(trackURL string, isPlaying bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.applied.trackURL = trackURL
	r.applied.isPlaying = isPlaying
}
