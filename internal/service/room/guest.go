package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crossparty/server/internal/repository/connection"
	"github.com/crossparty/server/internal/repository/room"
	"github.com/crossparty/server/pkg/wsrouter"
)

type JoinRoomParams struct {
	RoomId string
	Name   string
}

type JoinRoomResponse struct {
	GuestId     string
	JoinedGuest Guest
	Room        RoomState
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return JoinRoomResponse{}, ErrRoomNotFound
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if !r.IsActive {
		return JoinRoomResponse{}, ErrRoomInactive
	}

	guestIds, err := s.roomRepo.GetGuestIds(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get guest ids: %w", err)
	}

	if len(guestIds) >= s.guestsLimit {
		return JoinRoomResponse{}, ErrGuestLimitReached
	}

	guestId := uuid.NewString()
	joinedAt := time.Now().UnixMilli()
	if err := s.roomRepo.SetGuest(ctx, &room.SetGuestParams{
		Guest: room.Guest{
			Name:        params.Name,
			JoinedAt:    joinedAt,
			IsConnected: true,
		},
		GuestId: guestId,
		RoomId:  params.RoomId,
	}); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to set guest: %w", err)
	}

	joinedGuest := Guest{
		Id:          guestId,
		Name:        params.Name,
		JoinedAt:    joinedAt,
		IsConnected: true,
	}

	if err := s.publishEvent(ctx, params.RoomId, &Event{
		Type:  EventGuestJoined,
		Guest: &joinedGuest,
	}); err != nil {
		return JoinRoomResponse{}, err
	}

	roomState, err := s.GetRoomState(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	return JoinRoomResponse{
		GuestId:     guestId,
		JoinedGuest: joinedGuest,
		Room:        roomState,
	}, nil
}

type LeaveRoomParams struct {
	RoomId  string
	GuestId string
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) error {
	if err := s.roomRepo.RemoveGuest(ctx, &room.RemoveGuestParams{
		GuestId: params.GuestId,
		RoomId:  params.RoomId,
	}); err != nil {
		if errors.Is(err, room.ErrGuestNotFound) {
			return ErrGuestNotFound
		}

		return fmt.Errorf("failed to remove guest: %w", err)
	}

	return s.publishEvent(ctx, params.RoomId, &Event{
		Type:    EventGuestLeft,
		GuestId: params.GuestId,
	})
}

type KickGuestParams struct {
	RoomId        string
	KickedGuestId string
	SenderId      string
}

type KickGuestResponse struct {
	// Conn is nil when the kicked guest is not attached to this gateway.
	Conn *wsrouter.Conn
}

// KickGuest is host-only. The kicked guest learns of its removal from
// the GUEST_KICKED event carrying its id.
func (s service) KickGuest(ctx context.Context, params *KickGuestParams) (KickGuestResponse, error) {
	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return KickGuestResponse{}, ErrRoomNotFound
		}

		return KickGuestResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if params.SenderId != r.HostWriterId {
		return KickGuestResponse{}, ErrPermissionDenied
	}

	if err := s.roomRepo.RemoveGuest(ctx, &room.RemoveGuestParams{
		GuestId: params.KickedGuestId,
		RoomId:  params.RoomId,
	}); err != nil {
		if errors.Is(err, room.ErrGuestNotFound) {
			return KickGuestResponse{}, ErrGuestNotFound
		}

		return KickGuestResponse{}, fmt.Errorf("failed to remove guest: %w", err)
	}

	if err := s.publishEvent(ctx, params.RoomId, &Event{
		Type:    EventGuestKicked,
		GuestId: params.KickedGuestId,
	}); err != nil {
		return KickGuestResponse{}, err
	}

	conn, err := s.connRepo.GetConn(params.KickedGuestId)
	if err != nil && !errors.Is(err, connection.ErrNotFound) {
		return KickGuestResponse{}, fmt.Errorf("failed to get conn: %w", err)
	}

	return KickGuestResponse{Conn: conn}, nil
}

type ConnectParticipantParams struct {
	Conn          *wsrouter.Conn
	ParticipantId string
	RoomId        string
}

func (s service) ConnectParticipant(ctx context.Context, params *ConnectParticipantParams) error {
	if err := s.connRepo.Add(params.Conn, params.ParticipantId); err != nil {
		return err
	}

	// hosts have no presence entry
	if err := s.roomRepo.UpdateGuestIsConnected(ctx, &room.UpdateGuestIsConnectedParams{
		GuestId:     params.ParticipantId,
		RoomId:      params.RoomId,
		IsConnected: true,
	}); err != nil && !errors.Is(err, room.ErrGuestNotFound) {
		return fmt.Errorf("failed to update guest is_connected: %w", err)
	}

	return nil
}

type DisconnectParticipantParams struct {
	Conn   *wsrouter.Conn
	RoomId string
}

func (s service) DisconnectParticipant(ctx context.Context, params *DisconnectParticipantParams) error {
	participantId, err := s.connRepo.GetParticipantId(params.Conn)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return nil
		}

		return err
	}

	if err := s.connRepo.RemoveByConn(params.Conn); err != nil && !errors.Is(err, connection.ErrNotFound) {
		return err
	}

	if err := s.roomRepo.UpdateGuestIsConnected(ctx, &room.UpdateGuestIsConnectedParams{
		GuestId:     participantId,
		RoomId:      params.RoomId,
		IsConnected: false,
	}); err != nil && !errors.Is(err, room.ErrGuestNotFound) {
		return fmt.Errorf("failed to update guest is_connected: %w", err)
	}

	return nil
}
