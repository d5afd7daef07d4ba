package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crossparty/server/internal/service/room"
	"github.com/crossparty/server/pkg/wsrouter"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// kicked guests get a dedicated close code so clients can tell a kick
// apart from a room closure.
const (
	closeCodeKicked     = 4001
	closeCodeRoomClosed = 4002
)

func (c controller) attachGuest(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	if roomId == "" {
		c.logger.DebugContext(r.Context(), "empty room id")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "guest"
	}

	joinResp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		RoomId: roomId,
		Name:   name,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to join room", "error", err)
		switch {
		case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrRoomInactive):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, room.ErrGuestLimitReached):
			w.WriteHeader(http.StatusConflict)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	defer c.roomService.LeaveRoom(context.WithoutCancel(r.Context()), &room.LeaveRoomParams{
		RoomId:  roomId,
		GuestId: joinResp.GuestId,
	})

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	conn := wsrouter.NewConn(ws)
	defer conn.Close()

	if err := c.roomService.ConnectParticipant(r.Context(), &room.ConnectParticipantParams{
		Conn:          conn,
		ParticipantId: joinResp.GuestId,
		RoomId:        roomId,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect participant", "error", err)
		return
	}
	defer c.roomService.DisconnectParticipant(context.WithoutCancel(r.Context()), &room.DisconnectParticipantParams{
		Conn:   conn,
		RoomId: roomId,
	})

	if err := conn.WriteJSON(&Output{
		Type: "JOINED_ROOM",
		Payload: map[string]any{
			"guest_id": joinResp.GuestId,
			"room":     joinResp.Room,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	events, unsubscribe, err := c.roomService.SubscribeRoom(r.Context(), roomId)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to subscribe to room", "error", err)
		return
	}
	defer unsubscribe()

	go c.fanout(r.Context(), conn, events, joinResp.GuestId)

	ctx := context.WithValue(r.Context(), roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, participantIdCtxKey, joinResp.GuestId)

	if err := c.getGuestWSRouter().ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(r.Context(), "guest connection closed", "error", err)
	}
}

func (c controller) attachHost(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	if roomId == "" {
		c.logger.DebugContext(r.Context(), "empty room id")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	writerId := r.URL.Query().Get("writer-id")

	roomState, err := c.roomService.GetRoomState(r.Context(), roomId)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to get room state", "error", err)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if writerId == "" || writerId != roomState.HostWriterId {
		c.logger.DebugContext(r.Context(), "writer id mismatch")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	conn := wsrouter.NewConn(ws)
	defer conn.Close()

	if err := c.roomService.ConnectParticipant(r.Context(), &room.ConnectParticipantParams{
		Conn:          conn,
		ParticipantId: writerId,
		RoomId:        roomId,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect participant", "error", err)
		return
	}
	defer c.roomService.DisconnectParticipant(context.WithoutCancel(r.Context()), &room.DisconnectParticipantParams{
		Conn:   conn,
		RoomId: roomId,
	})

	if err := conn.WriteJSON(&Output{
		Type:    "ATTACHED",
		Payload: map[string]any{"room": roomState},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	events, unsubscribe, err := c.roomService.SubscribeRoom(r.Context(), roomId)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to subscribe to room", "error", err)
		return
	}
	defer unsubscribe()

	go c.fanout(r.Context(), conn, events, "")

	ctx := context.WithValue(r.Context(), roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, participantIdCtxKey, writerId)

	if err := c.getHostWSRouter().ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(r.Context(), "host connection closed", "error", err)
	}
}

// fanout forwards room events to one connection. A kick addressed to
// this participant and a room closure both end the stream with a close
// frame.
func (c controller) fanout(ctx context.Context, conn *wsrouter.Conn, events <-chan room.Event, guestId string) {
	for event := range events {
		if err := conn.WriteJSON(&Output{Type: event.Type, Payload: event}); err != nil {
			c.logger.DebugContext(ctx, "failed to write event", "error", err)
			return
		}

		switch event.Type {
		case room.EventGuestKicked:
			if guestId != "" && event.GuestId == guestId {
				conn.WriteClose(closeCodeKicked, "kicked")
				conn.Close()
				return
			}
		case room.EventRoomClosed:
			conn.WriteClose(closeCodeRoomClosed, "room closed")
			conn.Close()
			return
		}
	}
}

type pushStateInput struct {
	Track     *room.Track `json:"track"`
	IsPlaying bool        `json:"is_playing"`
	Position  int         `json:"position"`
	Timestamp int64       `json:"timestamp"`
	Action    string      `json:"action"`
}

func (c controller) handlePushState(ctx context.Context, _ *wsrouter.Conn, payload json.RawMessage) error {
	var input pushStateInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if _, err := c.roomService.PushPlaybackState(ctx, &room.PushPlaybackStateParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		WriterId:  c.getParticipantIdFromCtx(ctx),
		Track:     input.Track,
		IsPlaying: input.IsPlaying,
		Position:  input.Position,
		Timestamp: input.Timestamp,
		Action:    input.Action,
	}); err != nil {
		return fmt.Errorf("failed to push playback state: %w", err)
	}

	return nil
}

type enqueueTrackInput struct {
	Track room.Track `json:"track"`
}

func (c controller) handleEnqueueTrack(ctx context.Context, _ *wsrouter.Conn, payload json.RawMessage) error {
	var input enqueueTrackInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if _, err := c.roomService.Enqueue(ctx, &room.EnqueueParams{
		RoomId:      c.getRoomIdFromCtx(ctx),
		SubmitterId: c.getParticipantIdFromCtx(ctx),
		Track:       input.Track,
	}); err != nil {
		return fmt.Errorf("failed to enqueue track: %w", err)
	}

	return nil
}

type kickGuestInput struct {
	GuestId string `json:"guest_id"`
}

func (c controller) handleKickGuest(ctx context.Context, _ *wsrouter.Conn, payload json.RawMessage) error {
	var input kickGuestInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	resp, err := c.roomService.KickGuest(ctx, &room.KickGuestParams{
		RoomId:        c.getRoomIdFromCtx(ctx),
		KickedGuestId: input.GuestId,
		SenderId:      c.getParticipantIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to kick guest: %w", err)
	}

	// close the kicked guest's socket if it is attached here; its own
	// fanout loop handles the event path
	if resp.Conn != nil {
		resp.Conn.WriteClose(closeCodeKicked, "kicked")
		resp.Conn.Close()
	}

	return nil
}

func (c controller) handleDrainQueue(ctx context.Context, conn *wsrouter.Conn, _ json.RawMessage) error {
	resp, err := c.roomService.DequeueNext(ctx, &room.DequeueNextParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getParticipantIdFromCtx(ctx),
	})
	if err != nil {
		if errors.Is(err, room.ErrQueueEmpty) {
			return conn.WriteJSON(&Output{Type: "QUEUE_EMPTY", Payload: nil})
		}

		return fmt.Errorf("failed to dequeue next: %w", err)
	}

	return conn.WriteJSON(&Output{Type: "NEXT_TRACK", Payload: resp.Entry})
}

func (c controller) handleCloseRoom(ctx context.Context, _ *wsrouter.Conn, _ json.RawMessage) error {
	if err := c.roomService.CloseRoom(ctx, &room.CloseRoomParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getParticipantIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to close room: %w", err)
	}

	return nil
}

func (c controller) handleLeave(ctx context.Context, conn *wsrouter.Conn, _ json.RawMessage) error {
	if err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		RoomId:  c.getRoomIdFromCtx(ctx),
		GuestId: c.getParticipantIdFromCtx(ctx),
	}); err != nil && !errors.Is(err, room.ErrGuestNotFound) {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return conn.Close()
}

func (c controller) handleAlive(_ context.Context, _ *wsrouter.Conn, _ json.RawMessage) error {
	return nil
}
