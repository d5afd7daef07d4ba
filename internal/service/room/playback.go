package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/crossparty/server/internal/repository/room"
)

type PushPlaybackStateParams struct {
	RoomId    string
	WriterId  string
	Track     *Track
	IsPlaying bool
	Position  int
	Timestamp int64
	Action    string
}

type PushPlaybackStateResponse struct {
	Playback PlaybackState
}

// PushPlaybackState writes a snapshot of the room's playback state.
// Writes are last-writer-wins; ordering is established only by the
// revision assigned here, there is no compare-and-swap. Any participant
// may write: the host role is a convention of the sync core, not a
// storage-level invariant.
func (s service) PushPlaybackState(ctx context.Context, params *PushPlaybackStateParams) (PushPlaybackStateResponse, error) {
	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return PushPlaybackStateResponse{}, ErrRoomNotFound
		}

		return PushPlaybackStateResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if !r.IsActive {
		return PushPlaybackStateResponse{}, ErrRoomInactive
	}

	revision, err := s.roomRepo.IncrRevision(ctx, params.RoomId)
	if err != nil {
		return PushPlaybackStateResponse{}, fmt.Errorf("failed to incr revision: %w", err)
	}

	playback := PlaybackState{
		Track:     params.Track,
		IsPlaying: params.IsPlaying,
		Position:  params.Position,
		Timestamp: params.Timestamp,
		Action:    params.Action,
		Revision:  revision,
		WriterId:  params.WriterId,
	}

	if err := s.roomRepo.SetPlaybackState(ctx, &room.SetPlaybackStateParams{
		State:  playbackToRepo(playback),
		RoomId: params.RoomId,
	}); err != nil {
		return PushPlaybackStateResponse{}, fmt.Errorf("failed to set playback state: %w", err)
	}

	if err := s.publishEvent(ctx, params.RoomId, &Event{
		Type:     EventPlaybackState,
		Playback: &playback,
	}); err != nil {
		return PushPlaybackStateResponse{}, err
	}

	return PushPlaybackStateResponse{Playback: playback}, nil
}
