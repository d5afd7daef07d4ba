package party

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossparty/server/internal/player"
	"github.com/crossparty/server/internal/player/playertest"
	roomsvc "github.com/crossparty/server/internal/service/room"
)

func newTestHost(svc iRoomService) (*HostPublisher, *playertest.Engine) {
	engine := playertest.New()
	session := &SessionContext{
		RoomId:   "room-1",
		JoinCode: "AAAAAA",
		Writer:   WriterId("host-writer"),
	}

	return NewHostPublisher(svc, session, engine, slog.Default()), engine
}

func TestHostPublishesEngineTransitions(t *testing.T) {
	svc := newFakeRoomService()
	host, engine := newTestHost(svc)
	ctx := context.Background()

	track := player.Track{Title: "Song A", URL: "https://cdn.example/a.mp3", Duration: 215000}
	require.NoError(t, engine.Load(track, true))
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))

	require.Equal(t, 1, svc.pushCount())
	push := svc.lastPush()
	assert.Equal(t, roomsvc.ActionPlayTrack, push.Action)
	assert.Equal(t, "host-writer", push.WriterId)
	assert.True(t, push.IsPlaying)
	require.NotNil(t, push.Track)
	assert.Equal(t, track.URL, push.Track.URL)

	require.NoError(t, engine.Pause())
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))

	require.Equal(t, 2, svc.pushCount())
	push = svc.lastPush()
	assert.Equal(t, roomsvc.ActionPause, push.Action)
	assert.False(t, push.IsPlaying)

	require.NoError(t, engine.Resume())
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))

	require.Equal(t, 3, svc.pushCount())
	assert.Equal(t, roomsvc.ActionResume, svc.lastPush().Action)
}

func TestHostThrottlesProgressTicks(t *testing.T) {
	svc := newFakeRoomService()
	host, engine := newTestHost(svc)
	host.progressInterval = 50 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, engine.Load(player.Track{Title: "Song A", URL: "https://cdn.example/a.mp3"}, true))
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))
	require.Equal(t, 1, svc.pushCount())

	// a burst of ticks inside the interval publishes once
	for i := 1; i <= 5; i++ {
		engine.SetPosition(i * 250)
		require.NoError(t, host.handleEngineEvent(ctx, player.Event{Type: player.EventProgress, Position: i * 250}))
	}
	assert.Equal(t, 2, svc.pushCount())

	// after the interval the next tick goes through
	time.Sleep(60 * time.Millisecond)
	engine.SetPosition(2000)
	require.NoError(t, host.handleEngineEvent(ctx, player.Event{Type: player.EventProgress, Position: 2000}))
	require.Equal(t, 3, svc.pushCount())

	push := svc.lastPush()
	assert.Equal(t, roomsvc.ActionPlayTrack, push.Action, "progress reuses the last transition action")
	assert.Equal(t, 2000, push.Position)
}

func TestHostDrainsQueueOnFinish(t *testing.T) {
	svc := newFakeRoomService()
	host, engine := newTestHost(svc)
	ctx := context.Background()

	require.NoError(t, engine.Load(player.Track{Title: "Song A", URL: "https://cdn.example/a.mp3"}, true))
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))

	svc.enqueue(roomsvc.QueueEntry{
		Id:    "entry-1",
		Track: roomsvc.Track{Title: "Song B", URL: "https://cdn.example/b.mp3"},
	})

	require.NoError(t, host.handleEngineEvent(ctx, player.Event{Type: player.EventFinish, Position: 215000}))

	// the drained track is loaded with autoplay; its play event is the
	// next publish
	assert.Equal(t, 1, svc.dequeueCount())
	require.Equal(t, 2, engine.LoadCount())
	assert.Equal(t, "https://cdn.example/b.mp3", engine.LastLoad().URL)
	assert.True(t, engine.IsPlaying())

	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))
	push := svc.lastPush()
	assert.Equal(t, roomsvc.ActionPlayTrack, push.Action)
	assert.Equal(t, "https://cdn.example/b.mp3", push.Track.URL)
}

func TestHostStopsOnFinishWithEmptyQueue(t *testing.T) {
	svc := newFakeRoomService()
	host, engine := newTestHost(svc)
	ctx := context.Background()

	require.NoError(t, engine.Load(player.Track{Title: "Song A", URL: "https://cdn.example/a.mp3"}, true))
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))

	require.NoError(t, host.handleEngineEvent(ctx, player.Event{Type: player.EventFinish, Position: 215000}))

	assert.Equal(t, 1, engine.LoadCount(), "nothing new is loaded")
	push := svc.lastPush()
	assert.Equal(t, roomsvc.ActionStop, push.Action)
	assert.False(t, push.IsPlaying)
}

func TestHostMirrorsGuestWrites(t *testing.T) {
	svc := newFakeRoomService()
	host, engine := newTestHost(svc)
	ctx := context.Background()

	require.NoError(t, engine.Load(player.Track{Title: "Song A", URL: "https://cdn.example/a.mp3"}, true))
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))

	// guest pauses directly: the host mirrors the write onto its engine
	host.handleRoomEvent(ctx, roomsvc.Event{
		Type: roomsvc.EventPlaybackState,
		Playback: &roomsvc.PlaybackState{
			Track:     &roomsvc.Track{Title: "Song A", URL: "https://cdn.example/a.mp3"},
			IsPlaying: false,
			Position:  engine.Position(),
			Action:    roomsvc.ActionPause,
			Revision:  svc.revision + 1,
			WriterId:  "guest-writer",
		},
	})

	assert.False(t, engine.IsPlaying())
	require.Equal(t, 1, engine.PauseCount())

	// the engine's pause event becomes the host's confirmation write
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))
	push := svc.lastPush()
	assert.Equal(t, roomsvc.ActionPause, push.Action)
	assert.Equal(t, "host-writer", push.WriterId)
}

func TestHostIgnoresOwnEcho(t *testing.T) {
	svc := newFakeRoomService()
	host, engine := newTestHost(svc)
	ctx := context.Background()

	require.NoError(t, engine.Load(player.Track{Title: "Song A", URL: "https://cdn.example/a.mp3"}, true))
	require.NoError(t, host.handleEngineEvent(ctx, <-engine.Events()))

	host.handleRoomEvent(ctx, roomsvc.Event{
		Type: roomsvc.EventPlaybackState,
		Playback: &roomsvc.PlaybackState{
			Track:     &roomsvc.Track{Title: "Song A", URL: "https://cdn.example/a.mp3"},
			IsPlaying: false,
			Action:    roomsvc.ActionPause,
			Revision:  svc.revision,
			WriterId:  "host-writer",
		},
	})

	assert.True(t, engine.IsPlaying(), "own write must not loop back into the engine")
	assert.Equal(t, 0, engine.PauseCount())
}

func TestHostRunAppliesRoomEvents(t *testing.T) {
	svc := newFakeRoomService()
	host, engine := newTestHost(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- host.Run(ctx) }()

	svc.emit(roomsvc.Event{
		Type: roomsvc.EventPlaybackState,
		Playback: &roomsvc.PlaybackState{
			Track:     &roomsvc.Track{Title: "Song A", URL: "https://cdn.example/a.mp3"},
			IsPlaying: true,
			Revision:  1,
			WriterId:  "guest-writer",
		},
	})

	require.Eventually(t, func() bool {
		return engine.LoadCount() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
