package party

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crossparty/server/internal/metrics"
	"github.com/crossparty/server/internal/player"
	roomsvc "github.com/crossparty/server/internal/service/room"
	"github.com/crossparty/server/pkg/retry"
)

// ErrNoConfirmation is returned when a guest-initiated control write is
// not confirmed by a host write within the confirmation policy window.
// The guest keeps its locally applied state; the next host snapshot
// converges it either way.
var ErrNoConfirmation = errors.New("no host confirmation received")

// LeaveReason explains a forced leave reported to the embedding app.
type LeaveReason string

const (
	LeaveReasonKicked     LeaveReason = "kicked"
	LeaveReasonRoomClosed LeaveReason = "room_closed"
)

// GuestSubscriber runs on every non-host device. It reconciles the
// local playback engine to the shared room state and reports forced
// leaves (kick, room closure) to the embedding app.
type GuestSubscriber struct {
	svc     iRoomService
	session *SessionContext
	engine  player.Engine
	logger  *slog.Logger
	rec     *reconciler

	// ConfirmPolicy bounds the wait for a host confirmation after a
	// guest-initiated control write.
	confirmPolicy retry.Policy
	// roomCheckInterval paces the orphaned-room poll in Run.
	roomCheckInterval time.Duration
	onForcedLeave     func(reason LeaveReason)
}

func NewGuestSubscriber(svc iRoomService, session *SessionContext, engine player.Engine, logger *slog.Logger, onForcedLeave func(LeaveReason)) *GuestSubscriber {
	return &GuestSubscriber{
		svc:               svc,
		session:           session,
		engine:            engine,
		logger:            logger,
		rec:               newReconciler(session, engine),
		confirmPolicy:     retry.Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, Jitter: 50 * time.Millisecond},
		roomCheckInterval: RoomCheckInterval,
		onForcedLeave:     onForcedLeave,
	}
}

// Run blocks until ctx is cancelled, the feed closes, or the guest is
// forced out of the room. Besides the event feed it polls the room
// record: a room whose records expired without a ROOM_CLOSED event is
// treated as closed.
func (g *GuestSubscriber) Run(ctx context.Context) error {
	events, unsubscribe, err := g.svc.SubscribeRoom(ctx, g.session.RoomId)
	if err != nil {
		return err
	}
	defer unsubscribe()

	roomCheck := time.NewTicker(g.roomCheckInterval)
	defer roomCheck.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-roomCheck.C:
			if _, err := g.svc.GetRoomState(ctx, g.session.RoomId); err != nil {
				if errors.Is(err, roomsvc.ErrRoomNotFound) {
					g.forceLeave(LeaveReasonRoomClosed)
					return nil
				}
				g.logger.WarnContext(ctx, "failed to check room", "error", err)
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			switch ev.Type {
			case roomsvc.EventPlaybackState:
				if ev.Playback == nil {
					continue
				}
				if err := g.rec.apply(*ev.Playback); err != nil {
					g.logger.WarnContext(ctx, "failed to apply remote state", "error", err)
				}
			case roomsvc.EventGuestKicked:
				if ev.GuestId != g.session.GuestId {
					continue
				}
				g.forceLeave(LeaveReasonKicked)
				return nil
			case roomsvc.EventRoomClosed:
				g.forceLeave(LeaveReasonRoomClosed)
				return nil
			}
		}
	}
}

func (g *GuestSubscriber) forceLeave(reason LeaveReason) {
	if g.onForcedLeave != nil {
		g.onForcedLeave(reason)
	}
}

// RequestPause is guest-initiated direct control: the guest applies the
// action locally, writes a snapshot tagged with its own writer id, then
// waits for the host's confirmation write. The confirmation passes
// self-echo suppression because it carries the host's writer id, and is
// idempotent against the locally recorded state.
func (g *GuestSubscriber) RequestPause(ctx context.Context) error {
	if err := g.engine.Pause(); err != nil {
		return err
	}

	return g.requestControl(ctx, roomsvc.ActionPause, false)
}

func (g *GuestSubscriber) RequestResume(ctx context.Context) error {
	if err := g.engine.Resume(); err != nil {
		return err
	}

	return g.requestControl(ctx, roomsvc.ActionResume, true)
}

func (g *GuestSubscriber) requestControl(ctx context.Context, action string, isPlaying bool) error {
	current := g.engine.Current()
	var track *roomsvc.Track
	trackURL := ""
	if current != nil {
		track = &roomsvc.Track{
			Title:    current.Title,
			Artist:   current.Artist,
			Album:    current.Album,
			URL:      current.URL,
			ImageURL: current.ImageURL,
			Duration: current.Duration,
		}
		trackURL = current.URL
	}

	g.rec.recordLocal(trackURL, isPlaying)

	resp, err := g.svc.PushPlaybackState(ctx, &roomsvc.PushPlaybackStateParams{
		RoomId:    g.session.RoomId,
		WriterId:  string(g.session.Writer),
		Track:     track,
		IsPlaying: isPlaying,
		Position:  g.engine.Position(),
		Timestamp: time.Now().UnixMilli(),
		Action:    action,
	})
	if err != nil {
		return err
	}

	metrics.SnapshotsPublished.Inc()

	// The host mirrors the write and republishes with its own writer id
	// and a higher revision; seeing that revision is the confirmation.
	pushed := resp.Playback.Revision
	err = g.confirmPolicy.Do(ctx, func() (bool, error) {
		if g.rec.lastApplied().revision > pushed {
			return false, nil
		}

		return true, ErrNoConfirmation
	})
	if errors.Is(err, retry.ErrAttemptsExceeded) {
		return ErrNoConfirmation
	}

	return err
}
