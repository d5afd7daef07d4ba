package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crossparty/server/internal/repository/room"
)

type EnqueueParams struct {
	RoomId      string
	SubmitterId string
	Track       Track
}

type EnqueueResponse struct {
	Entry QueueEntry
}

func (s service) Enqueue(ctx context.Context, params *EnqueueParams) (EnqueueResponse, error) {
	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return EnqueueResponse{}, ErrRoomNotFound
		}

		return EnqueueResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if !r.IsActive {
		return EnqueueResponse{}, ErrRoomInactive
	}

	length, err := s.roomRepo.GetQueueLength(ctx, params.RoomId)
	if err != nil {
		return EnqueueResponse{}, fmt.Errorf("failed to get queue length: %w", err)
	}

	if length >= s.queueLimit {
		return EnqueueResponse{}, ErrQueueLimitReached
	}

	entryId := uuid.NewString()
	addedAt := time.Now().UnixMilli()
	if err := s.roomRepo.AddQueueEntry(ctx, &room.AddQueueEntryParams{
		Entry: room.QueueEntry{
			Title:    params.Track.Title,
			Artist:   params.Track.Artist,
			Album:    params.Track.Album,
			URL:      params.Track.URL,
			ImageURL: params.Track.ImageURL,
			Duration: params.Track.Duration,
			AddedAt:  addedAt,
			AddedBy:  params.SubmitterId,
		},
		EntryId: entryId,
		RoomId:  params.RoomId,
	}); err != nil {
		return EnqueueResponse{}, fmt.Errorf("failed to add queue entry: %w", err)
	}

	entry := QueueEntry{
		Id:      entryId,
		Track:   params.Track,
		AddedAt: addedAt,
		AddedBy: params.SubmitterId,
	}

	if err := s.publishEvent(ctx, params.RoomId, &Event{
		Type:  EventQueueAdded,
		Entry: &entry,
	}); err != nil {
		return EnqueueResponse{}, err
	}

	return EnqueueResponse{Entry: entry}, nil
}

type DequeueNextParams struct {
	RoomId   string
	SenderId string
}

type DequeueNextResponse struct {
	Entry QueueEntry
}

// DequeueNext pops the head of the pending queue. Host-only: guests
// submit, only the host drains.
func (s service) DequeueNext(ctx context.Context, params *DequeueNextParams) (DequeueNextResponse, error) {
	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return DequeueNextResponse{}, ErrRoomNotFound
		}

		return DequeueNextResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if params.SenderId != r.HostWriterId {
		return DequeueNextResponse{}, ErrPermissionDenied
	}

	entry, err := s.roomRepo.PopQueueHead(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrQueueEmpty) {
			return DequeueNextResponse{}, ErrQueueEmpty
		}

		return DequeueNextResponse{}, fmt.Errorf("failed to pop queue head: %w", err)
	}

	drained := queueEntryFromRepo("", entry)
	if err := s.publishEvent(ctx, params.RoomId, &Event{
		Type:  EventQueueDrained,
		Entry: &drained,
	}); err != nil {
		return DequeueNextResponse{}, err
	}

	return DequeueNextResponse{Entry: drained}, nil
}
