package app

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossparty/server/internal/party"
	"github.com/crossparty/server/internal/player"
	"github.com/crossparty/server/internal/player/playertest"
	"github.com/crossparty/server/internal/repository/connection/inmemory"
	roomRedis "github.com/crossparty/server/internal/repository/room/redis"
	"github.com/crossparty/server/internal/service/room"
)

// TestPartySession drives a whole listening session end to end: the
// host's engine events fan out over the room feed and the guest's
// engine follows them.
func TestPartySession(t *testing.T) {
	slog.SetLogLoggerLevel(slog.LevelDebug)
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	roomRepo := roomRedis.NewRepo(rc, time.Hour)
	connRepo := inmemory.NewRepo()
	service := room.NewService(roomRepo, connRepo, &room.Config{GuestsLimit: 9, QueueLimit: 25})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// host creates the room
	hostWriter := party.NewWriterId()
	createRoomResp, err := service.CreateRoom(ctx, &room.CreateRoomParams{
		HostWriterId: string(hostWriter),
	})
	require.NoError(t, err)
	t.Log("room created")

	hostEngine := playertest.New()
	host := party.NewHostPublisher(service, &party.SessionContext{
		RoomId:   createRoomResp.RoomId,
		JoinCode: createRoomResp.JoinCode,
		Writer:   hostWriter,
	}, hostEngine, slog.Default())

	hostDone := make(chan error, 1)
	go func() { hostDone <- host.Run(ctx) }()

	// guest resolves the code and joins
	roomId, err := service.ResolveCode(ctx, createRoomResp.JoinCode)
	require.NoError(t, err)
	require.Equal(t, createRoomResp.RoomId, roomId)

	joinRoomResp, err := service.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId: roomId,
		Name:   "alice",
	})
	require.NoError(t, err)
	t.Log("guest joined")

	var leaveMu sync.Mutex
	var leaveReason party.LeaveReason
	guestEngine := playertest.New()
	guest := party.NewGuestSubscriber(service, &party.SessionContext{
		RoomId:  roomId,
		Writer:  party.NewWriterId(),
		GuestId: joinRoomResp.GuestId,
	}, guestEngine, slog.Default(), func(reason party.LeaveReason) {
		leaveMu.Lock()
		leaveReason = reason
		leaveMu.Unlock()
	})

	guestDone := make(chan error, 1)
	go func() { guestDone <- guest.Run(ctx) }()

	// give both subscriptions time to attach before the first write
	time.Sleep(50 * time.Millisecond)

	// host starts a track; the guest's engine follows
	trackA := player.Track{Title: "Song A", Artist: "Artist A", URL: "https://cdn.example/a.mp3", Duration: 215000}
	require.NoError(t, hostEngine.Load(trackA, true))

	require.Eventually(t, func() bool {
		current := guestEngine.Current()
		return current != nil && current.URL == trackA.URL && guestEngine.IsPlaying()
	}, 3*time.Second, 10*time.Millisecond, "guest did not pick up the track")
	t.Log("guest playing the host's track")

	// guest pauses directly and waits for the host's confirmation
	require.NoError(t, guest.RequestPause(ctx))
	assert.False(t, guestEngine.IsPlaying())

	require.Eventually(t, func() bool {
		return !hostEngine.IsPlaying()
	}, 3*time.Second, 10*time.Millisecond, "host did not mirror the pause")
	assert.Equal(t, 1, hostEngine.PauseCount())
	assert.Equal(t, 1, guestEngine.PauseCount(), "confirmation must not pause the guest twice")
	t.Log("guest pause confirmed")

	// guest queues the next track; the host drains it when playback ends
	trackB := room.Track{Title: "Song B", URL: "https://cdn.example/b.mp3"}
	_, err = service.Enqueue(ctx, &room.EnqueueParams{
		RoomId:      roomId,
		SubmitterId: joinRoomResp.GuestId,
		Track:       trackB,
	})
	require.NoError(t, err)

	hostEngine.Emit(player.Event{Type: player.EventFinish, Position: trackA.Duration})

	require.Eventually(t, func() bool {
		current := hostEngine.Current()
		return current != nil && current.URL == trackB.URL && hostEngine.IsPlaying()
	}, 3*time.Second, 10*time.Millisecond, "host did not drain the queue")

	require.Eventually(t, func() bool {
		current := guestEngine.Current()
		return current != nil && current.URL == trackB.URL && guestEngine.IsPlaying()
	}, 3*time.Second, 10*time.Millisecond, "guest did not follow the drained track")

	state, err := service.GetRoomState(ctx, roomId)
	require.NoError(t, err)
	assert.Empty(t, state.Queue, "drained entry must leave the queue")
	t.Log("queue drained")

	// host closes the room; the guest is forced out
	err = service.CloseRoom(ctx, &room.CloseRoomParams{
		RoomId:   roomId,
		SenderId: string(hostWriter),
	})
	require.NoError(t, err)

	select {
	case err := <-guestDone:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("guest did not leave after room close")
	}

	leaveMu.Lock()
	reason := leaveReason
	leaveMu.Unlock()
	assert.Equal(t, party.LeaveReasonRoomClosed, reason)

	_, err = service.ResolveCode(ctx, createRoomResp.JoinCode)
	assert.ErrorIs(t, err, room.ErrInvalidCode)

	cancel()
	<-hostDone
}

// TestKickedGuestIsForcedOut covers the host-side moderation path.
func TestKickedGuestIsForcedOut(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	roomRepo := roomRedis.NewRepo(rc, time.Hour)
	connRepo := inmemory.NewRepo()
	service := room.NewService(roomRepo, connRepo, &room.Config{GuestsLimit: 9, QueueLimit: 25})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hostWriter := party.NewWriterId()
	createRoomResp, err := service.CreateRoom(ctx, &room.CreateRoomParams{
		HostWriterId: string(hostWriter),
	})
	require.NoError(t, err)

	joinRoomResp, err := service.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId: createRoomResp.RoomId,
		Name:   "mallory",
	})
	require.NoError(t, err)

	var leaveMu sync.Mutex
	var leaveReason party.LeaveReason
	guest := party.NewGuestSubscriber(service, &party.SessionContext{
		RoomId:  createRoomResp.RoomId,
		Writer:  party.NewWriterId(),
		GuestId: joinRoomResp.GuestId,
	}, playertest.New(), slog.Default(), func(reason party.LeaveReason) {
		leaveMu.Lock()
		leaveReason = reason
		leaveMu.Unlock()
	})

	guestDone := make(chan error, 1)
	go func() { guestDone <- guest.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	_, err = service.KickGuest(ctx, &room.KickGuestParams{
		RoomId:        createRoomResp.RoomId,
		KickedGuestId: joinRoomResp.GuestId,
		SenderId:      string(hostWriter),
	})
	require.NoError(t, err)

	select {
	case err := <-guestDone:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("guest did not leave after kick")
	}

	leaveMu.Lock()
	reason := leaveReason
	leaveMu.Unlock()
	assert.Equal(t, party.LeaveReasonKicked, reason)

	state, err := service.GetRoomState(ctx, createRoomResp.RoomId)
	require.NoError(t, err)
	assert.Empty(t, state.Guests)
}
