package redis

import (
	"context"
	"fmt"

	"github.com/crossparty/server/internal/repository/room"
)

func (r repo) getPlaybackKey(roomId string) string {
	return "room:" + roomId + ":playback"
}

func (r repo) SetPlaybackState(ctx context.Context, params *room.SetPlaybackStateParams) error {
	pipe := r.rc.TxPipeline()

	playbackKey := r.getPlaybackKey(params.RoomId)
	pipe.HSet(ctx, playbackKey, params.State)
	pipe.Expire(ctx, playbackKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set playback state: %w", err)
	}

	return nil
}

func (r repo) GetPlaybackState(ctx context.Context, roomId string) (room.PlaybackState, error) {
	playbackKey := r.getPlaybackKey(roomId)
	cmd := r.rc.HGetAll(ctx, playbackKey)
	if err := cmd.Err(); err != nil {
		return room.PlaybackState{}, fmt.Errorf("failed to get playback state: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.PlaybackState{}, room.ErrPlaybackStateNotFound
	}

	var state room.PlaybackState
	if err := cmd.Scan(&state); err != nil {
		return room.PlaybackState{}, fmt.Errorf("failed to scan playback state: %w", err)
	}

	r.rc.Expire(ctx, playbackKey, r.expireDuration)

	return state, nil
}
