package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crossparty/server/internal/repository/room"
)

type CreateRoomParams struct {
	HostWriterId string
}

type CreateRoomResponse struct {
	RoomId   string
	JoinCode string
}

// CreateRoom creates a room with a fresh join code. Code generation is
// collision-checked against active rooms and retried under the
// configured policy.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomId := uuid.NewString()

	var joinCode string
	err := s.codeRetry.Do(ctx, func() (bool, error) {
		code := s.generator.GenerateRandomString(joinCodeLength)
		if err := s.roomRepo.SetJoinCode(ctx, &room.SetJoinCodeParams{
			JoinCode: code,
			RoomId:   roomId,
		}); err != nil {
			return errors.Is(err, room.ErrJoinCodeTaken), err
		}

		joinCode = code
		return false, nil
	})
	if err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to allocate join code: %w", err)
	}

	now := time.Now().UnixMilli()
	if err := s.roomRepo.SetRoom(ctx, &room.SetRoomParams{
		RoomId:       roomId,
		JoinCode:     joinCode,
		HostWriterId: params.HostWriterId,
		CreatedAt:    now,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set room: %w", err)
	}

	if err := s.roomRepo.SetPlaybackState(ctx, &room.SetPlaybackStateParams{
		State: room.PlaybackState{
			IsPlaying: false,
			Position:  0,
			Timestamp: now,
			Revision:  0,
		},
		RoomId: roomId,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set playback state: %w", err)
	}

	return CreateRoomResponse{
		RoomId:   roomId,
		JoinCode: joinCode,
	}, nil
}

// ResolveCode maps a join code to a room id.
func (s service) ResolveCode(ctx context.Context, joinCode string) (string, error) {
	roomId, err := s.roomRepo.GetRoomIdByJoinCode(ctx, joinCode)
	if err != nil {
		if errors.Is(err, room.ErrJoinCodeNotFound) {
			return "", ErrInvalidCode
		}

		return "", fmt.Errorf("failed to resolve join code: %w", err)
	}

	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return "", ErrInvalidCode
		}

		return "", fmt.Errorf("failed to get room: %w", err)
	}

	if !r.IsActive {
		return "", ErrRoomInactive
	}

	return roomId, nil
}

type CloseRoomParams struct {
	RoomId   string
	SenderId string
}

// CloseRoom deactivates the room, removes the join code mapping and
// deletes the room's records. Closing an already closed room is a no-op.
func (s service) CloseRoom(ctx context.Context, params *CloseRoomParams) error {
	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return nil
		}

		return fmt.Errorf("failed to get room: %w", err)
	}

	if params.SenderId != r.HostWriterId {
		return ErrPermissionDenied
	}

	if err := s.roomRepo.UpdateRoomIsActive(ctx, params.RoomId, false); err != nil {
		return fmt.Errorf("failed to deactivate room: %w", err)
	}

	if err := s.roomRepo.RemoveJoinCode(ctx, r.JoinCode); err != nil {
		return fmt.Errorf("failed to remove join code: %w", err)
	}

	if err := s.publishEvent(ctx, params.RoomId, &Event{Type: EventRoomClosed}); err != nil {
		return err
	}

	if err := s.roomRepo.RemoveRoom(ctx, params.RoomId); err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	return nil
}

func (s service) GetRoomState(ctx context.Context, roomId string) (RoomState, error) {
	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return RoomState{}, ErrRoomNotFound
		}

		return RoomState{}, fmt.Errorf("failed to get room: %w", err)
	}

	state, err := s.roomRepo.GetPlaybackState(ctx, roomId)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get playback state: %w", err)
	}

	guests, err := s.getGuests(ctx, roomId)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get guests: %w", err)
	}

	queue, err := s.getQueue(ctx, roomId)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get queue: %w", err)
	}

	return RoomState{
		RoomId:       roomId,
		JoinCode:     r.JoinCode,
		HostWriterId: r.HostWriterId,
		IsActive:     r.IsActive,
		Playback:     playbackFromRepo(state),
		Guests:       guests,
		Queue:        queue,
	}, nil
}

// SubscribeRoom returns the room's change feed. The returned func is the
// only cancellation primitive; in-flight writes cannot be cancelled.
func (s service) SubscribeRoom(ctx context.Context, roomId string) (<-chan Event, func(), error) {
	payloads, unsubscribe, err := s.roomRepo.SubscribeEvents(ctx, roomId)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		for payload := range payloads {
			var event Event
			if err := json.Unmarshal(payload, &event); err != nil {
				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, unsubscribe, nil
}
