package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/crossparty/server/internal/repository/room"
)

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getJoinCodeKey(joinCode string) string {
	return "room-code:" + joinCode
}

func (r repo) getRevisionKey(roomId string) string {
	return "room:" + roomId + ":revision"
}

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	pipe := r.rc.TxPipeline()

	roomKey := r.getRoomKey(params.RoomId)
	pipe.HSet(ctx, roomKey, room.Room{
		JoinCode:     params.JoinCode,
		HostWriterId: params.HostWriterId,
		IsActive:     true,
		CreatedAt:    params.CreatedAt,
	})
	pipe.Expire(ctx, roomKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	roomKey := r.getRoomKey(roomId)
	cmd := r.rc.HGetAll(ctx, roomKey)
	if err := cmd.Err(); err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	var res room.Room
	if err := cmd.Scan(&res); err != nil {
		return room.Room{}, fmt.Errorf("failed to scan room: %w", err)
	}

	return res, nil
}

func (r repo) UpdateRoomIsActive(ctx context.Context, roomId string, isActive bool) error {
	roomKey := r.getRoomKey(roomId)
	cmd := r.rc.Exists(ctx, roomKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, roomKey, "is_active", isActive).Err(); err != nil {
		return fmt.Errorf("failed to update room is_active: %w", err)
	}

	return nil
}

// RemoveRoom deletes every key belonging to the room. Safe to call on a
// room that is already gone.
func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	guestIds, err := r.GetGuestIds(ctx, roomId)
	if err != nil {
		return fmt.Errorf("failed to get guest ids: %w", err)
	}

	entryIds, err := r.GetQueueIds(ctx, roomId)
	if err != nil {
		return fmt.Errorf("failed to get queue ids: %w", err)
	}

	pipe := r.rc.TxPipeline()
	for _, guestId := range guestIds {
		pipe.Del(ctx, r.getGuestKey(roomId, guestId))
	}
	for _, entryId := range entryIds {
		pipe.Del(ctx, r.getQueueEntryKey(roomId, entryId))
	}
	pipe.Del(ctx,
		r.getGuestListKey(roomId),
		r.getQueueKey(roomId),
		r.getPlaybackKey(roomId),
		r.getRevisionKey(roomId),
		r.getRoomKey(roomId),
	)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	return nil
}

func (r repo) SetJoinCode(ctx context.Context, params *room.SetJoinCodeParams) error {
	codeKey := r.getJoinCodeKey(params.JoinCode)
	ok, err := r.rc.SetNX(ctx, codeKey, params.RoomId, r.expireDuration).Result()
	if err != nil {
		return fmt.Errorf("failed to set join code: %w", err)
	}

	if !ok {
		return room.ErrJoinCodeTaken
	}

	return nil
}

func (r repo) GetRoomIdByJoinCode(ctx context.Context, joinCode string) (string, error) {
	roomId, err := r.rc.Get(ctx, r.getJoinCodeKey(joinCode)).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", room.ErrJoinCodeNotFound
		}

		return "", fmt.Errorf("failed to get room id by join code: %w", err)
	}

	return roomId, nil
}

func (r repo) RemoveJoinCode(ctx context.Context, joinCode string) error {
	if err := r.rc.Del(ctx, r.getJoinCodeKey(joinCode)).Err(); err != nil {
		return fmt.Errorf("failed to remove join code: %w", err)
	}

	return nil
}

// IncrRevision returns the next value of the room's monotonic revision
// counter.
func (r repo) IncrRevision(ctx context.Context, roomId string) (int64, error) {
	revisionKey := r.getRevisionKey(roomId)
	revision, err := r.rc.Incr(ctx, revisionKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to incr revision: %w", err)
	}

	r.rc.Expire(ctx, revisionKey, r.expireDuration)

	return revision, nil
}
