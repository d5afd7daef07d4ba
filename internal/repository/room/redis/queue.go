package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/crossparty/server/internal/repository/room"
)

func (r repo) getQueueKey(roomId string) string {
	return "room:" + roomId + ":queue"
}

func (r repo) getQueueEntryKey(roomId, entryId string) string {
	return "room:" + roomId + ":queue-entry:" + entryId
}

func (r repo) AddQueueEntry(ctx context.Context, params *room.AddQueueEntryParams) error {
	pipe := r.rc.TxPipeline()

	entryKey := r.getQueueEntryKey(params.RoomId, params.EntryId)
	pipe.HSet(ctx, entryKey, params.Entry)
	pipe.Expire(ctx, entryKey, r.expireDuration)

	queueKey := r.getQueueKey(params.RoomId)
	r.addWithIncrement(ctx, pipe, queueKey, params.EntryId)
	pipe.Expire(ctx, queueKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to add queue entry: %w", err)
	}

	return nil
}

func (r repo) GetQueueIds(ctx context.Context, roomId string) ([]string, error) {
	entryIds, err := r.rc.ZRange(ctx, r.getQueueKey(roomId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue ids: %w", err)
	}

	return entryIds, nil
}

func (r repo) GetQueueEntry(ctx context.Context, params *room.GetQueueEntryParams) (room.QueueEntry, error) {
	entryKey := r.getQueueEntryKey(params.RoomId, params.EntryId)
	cmd := r.rc.HGetAll(ctx, entryKey)
	if err := cmd.Err(); err != nil {
		return room.QueueEntry{}, fmt.Errorf("failed to get queue entry: %w", err)
	}

	if len(cmd.Val()) == 0 {
		return room.QueueEntry{}, room.ErrQueueEntryNotFound
	}

	var entry room.QueueEntry
	if err := cmd.Scan(&entry); err != nil {
		return room.QueueEntry{}, fmt.Errorf("failed to scan queue entry: %w", err)
	}

	return entry, nil
}

func (r repo) GetQueueLength(ctx context.Context, roomId string) (int, error) {
	length, err := r.rc.ZCard(ctx, r.getQueueKey(roomId)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}

	return int(length), nil
}

// PopQueueHead atomically removes the head of the queue and returns it.
func (r repo) PopQueueHead(ctx context.Context, roomId string) (room.QueueEntry, error) {
	cmd := r.rc.EvalSha(ctx, r.popMinScript, []string{r.getQueueKey(roomId)})
	entryId, err := cmd.Text()
	if err != nil {
		if err == goredis.Nil {
			return room.QueueEntry{}, room.ErrQueueEmpty
		}

		return room.QueueEntry{}, fmt.Errorf("failed to pop queue head: %w", err)
	}

	entry, err := r.GetQueueEntry(ctx, &room.GetQueueEntryParams{
		EntryId: entryId,
		RoomId:  roomId,
	})
	if err != nil {
		return room.QueueEntry{}, err
	}

	if err := r.rc.Del(ctx, r.getQueueEntryKey(roomId, entryId)).Err(); err != nil {
		return room.QueueEntry{}, fmt.Errorf("failed to remove queue entry: %w", err)
	}

	return entry, nil
}
