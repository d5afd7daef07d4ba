package redis

import (
	"context"
	"fmt"

	"github.com/crossparty/server/internal/repository/room"
)

func (r repo) getGuestKey(roomId, guestId string) string {
	return "room:" + roomId + ":guest:" + guestId
}

func (r repo) getGuestListKey(roomId string) string {
	return "room:" + roomId + ":guests"
}

func (r repo) SetGuest(ctx context.Context, params *room.SetGuestParams) error {
	pipe := r.rc.TxPipeline()

	guestKey := r.getGuestKey(params.RoomId, params.GuestId)
	pipe.HSet(ctx, guestKey, params.Guest)
	pipe.Expire(ctx, guestKey, r.expireDuration)

	guestListKey := r.getGuestListKey(params.RoomId)
	r.addWithIncrement(ctx, pipe, guestListKey, params.GuestId)
	pipe.Expire(ctx, guestListKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set guest: %w", err)
	}

	return nil
}

func (r repo) GetGuest(ctx context.Context, params *room.GetGuestParams) (room.Guest, error) {
	guestKey := r.getGuestKey(params.RoomId, params.GuestId)
	cmd := r.rc.HGetAll(ctx, guestKey)
	if err := cmd.Err(); err != nil {
		return room.Guest{}, fmt.Errorf("failed to get guest: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.Guest{}, room.ErrGuestNotFound
	}

	var guest room.Guest
	if err := cmd.Scan(&guest); err != nil {
		return room.Guest{}, fmt.Errorf("failed to scan guest: %w", err)
	}

	return guest, nil
}

func (r repo) GetGuestIds(ctx context.Context, roomId string) ([]string, error) {
	guestIds, err := r.rc.ZRange(ctx, r.getGuestListKey(roomId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get guest ids: %w", err)
	}

	return guestIds, nil
}

func (r repo) RemoveGuest(ctx context.Context, params *room.RemoveGuestParams) error {
	removed, err := r.rc.ZRem(ctx, r.getGuestListKey(params.RoomId), params.GuestId).Result()
	if err != nil {
		return fmt.Errorf("failed to remove guest from list: %w", err)
	}

	if removed == 0 {
		return room.ErrGuestNotFound
	}

	if err := r.rc.Del(ctx, r.getGuestKey(params.RoomId, params.GuestId)).Err(); err != nil {
		return fmt.Errorf("failed to remove guest: %w", err)
	}

	return nil
}

func (r repo) UpdateGuestIsConnected(ctx context.Context, params *room.UpdateGuestIsConnectedParams) error {
	guestKey := r.getGuestKey(params.RoomId, params.GuestId)
	cmd := r.rc.Exists(ctx, guestKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return room.ErrGuestNotFound
	}

	if err := r.rc.HSet(ctx, guestKey, "is_connected", params.IsConnected).Err(); err != nil {
		return fmt.Errorf("failed to update guest is_connected: %w", err)
	}

	return nil
}
