package party

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crossparty/server/internal/metrics"
	"github.com/crossparty/server/internal/player"
	roomsvc "github.com/crossparty/server/internal/service/room"
)

// HostPublisher runs on the room's host device. It observes local
// playback-engine events and pushes snapshots of the shared state:
// immediately on state transitions, throttled for progress ticks. It
// also mirrors state written by guests (direct guest control), so the
// engine events it triggers become the host's confirmation writes.
type HostPublisher struct {
	svc     iRoomService
	session *SessionContext
	engine  player.Engine
	logger  *slog.Logger
	rec     *reconciler

	progressInterval time.Duration
	lastProgress     time.Time
	lastAction       string
}

func NewHostPublisher(svc iRoomService, session *SessionContext, engine player.Engine, logger *slog.Logger) *HostPublisher {
	return &HostPublisher{
		svc:              svc,
		session:          session,
		engine:           engine,
		logger:           logger,
		rec:              newReconciler(session, engine),
		progressInterval: ProgressInterval,
	}
}

// Run blocks until ctx is cancelled or the room's event feed closes.
func (h *HostPublisher) Run(ctx context.Context) error {
	events, unsubscribe, err := h.svc.SubscribeRoom(ctx, h.session.RoomId)
	if err != nil {
		return err
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-h.engine.Events():
			if !ok {
				return nil
			}
			if err := h.handleEngineEvent(ctx, ev); err != nil {
				h.logger.WarnContext(ctx, "failed to handle engine event", "type", ev.Type, "error", err)
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			h.handleRoomEvent(ctx, ev)
		}
	}
}

func (h *HostPublisher) handleEngineEvent(ctx context.Context, ev player.Event) error {
	switch ev.Type {
	case player.EventPlay:
		return h.push(ctx, roomsvc.ActionPlayTrack, ev.Track, true, ev.Position)
	case player.EventPause:
		return h.push(ctx, roomsvc.ActionPause, h.engine.Current(), false, ev.Position)
	case player.EventResume:
		return h.push(ctx, roomsvc.ActionResume, h.engine.Current(), true, ev.Position)
	case player.EventProgress:
		if time.Since(h.lastProgress) < h.progressInterval {
			return nil
		}
		h.lastProgress = time.Now()

		action := h.lastAction
		if action == "" {
			action = roomsvc.ActionResume
		}
		return h.push(ctx, action, h.engine.Current(), h.engine.IsPlaying(), ev.Position)
	case player.EventFinish:
		return h.drainQueue(ctx, ev.Position)
	}

	return nil
}

// drainQueue pops the next pending entry and plays it; the engine's
// play event then publishes the new state. An empty queue stops
// playback.
func (h *HostPublisher) drainQueue(ctx context.Context, position int) error {
	resp, err := h.svc.DequeueNext(ctx, &roomsvc.DequeueNextParams{
		RoomId:   h.session.RoomId,
		SenderId: string(h.session.Writer),
	})
	if err != nil {
		if errors.Is(err, roomsvc.ErrQueueEmpty) {
			return h.push(ctx, roomsvc.ActionStop, h.engine.Current(), false, position)
		}

		return err
	}

	metrics.QueueDrains.Inc()

	return h.engine.Load(player.Track{
		Title:    resp.Entry.Track.Title,
		Artist:   resp.Entry.Track.Artist,
		Album:    resp.Entry.Track.Album,
		URL:      resp.Entry.Track.URL,
		ImageURL: resp.Entry.Track.ImageURL,
		Duration: resp.Entry.Track.Duration,
	}, true)
}

func (h *HostPublisher) handleRoomEvent(ctx context.Context, ev roomsvc.Event) {
	if ev.Type != roomsvc.EventPlaybackState || ev.Playback == nil {
		return
	}

	if err := h.rec.apply(*ev.Playback); err != nil {
		h.logger.WarnContext(ctx, "failed to apply remote state", "error", err)
	}
}

func (h *HostPublisher) push(ctx context.Context, action string, track *player.Track, isPlaying bool, position int) error {
	var svcTrack *roomsvc.Track
	trackURL := ""
	if track != nil {
		svcTrack = &roomsvc.Track{
			Title:    track.Title,
			Artist:   track.Artist,
			Album:    track.Album,
			URL:      track.URL,
			ImageURL: track.ImageURL,
			Duration: track.Duration,
		}
		trackURL = track.URL
	}

	if _, err := h.svc.PushPlaybackState(ctx, &roomsvc.PushPlaybackStateParams{
		RoomId:    h.session.RoomId,
		WriterId:  string(h.session.Writer),
		Track:     svcTrack,
		IsPlaying: isPlaying,
		Position:  position,
		Timestamp: time.Now().UnixMilli(),
		Action:    action,
	}); err != nil {
		return err
	}

	metrics.SnapshotsPublished.Inc()
	h.lastAction = action
	h.rec.recordLocal(trackURL, isPlaying)

	return nil
}
