package room

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crossparty/server/internal/repository/room"
)

func (s service) publishEvent(ctx context.Context, roomId string, event *Event) error {
	event.RoomId = roomId
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := s.roomRepo.PublishEvent(ctx, roomId, payload); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func playbackFromRepo(state room.PlaybackState) PlaybackState {
	playback := PlaybackState{
		IsPlaying: state.IsPlaying,
		Position:  state.Position,
		Timestamp: state.Timestamp,
		Action:    state.Action,
		Revision:  state.Revision,
		WriterId:  state.WriterId,
	}

	if state.TrackURL != "" {
		playback.Track = &Track{
			Title:    state.TrackTitle,
			Artist:   state.TrackArtist,
			Album:    state.TrackAlbum,
			URL:      state.TrackURL,
			ImageURL: state.TrackImageURL,
			Duration: state.TrackDuration,
		}
	}

	return playback
}

func playbackToRepo(playback PlaybackState) room.PlaybackState {
	state := room.PlaybackState{
		IsPlaying: playback.IsPlaying,
		Position:  playback.Position,
		Timestamp: playback.Timestamp,
		Action:    playback.Action,
		Revision:  playback.Revision,
		WriterId:  playback.WriterId,
	}

	if playback.Track != nil {
		state.TrackTitle = playback.Track.Title
		state.TrackArtist = playback.Track.Artist
		state.TrackAlbum = playback.Track.Album
		state.TrackURL = playback.Track.URL
		state.TrackImageURL = playback.Track.ImageURL
		state.TrackDuration = playback.Track.Duration
	}

	return state
}

func (s service) getGuests(ctx context.Context, roomId string) ([]Guest, error) {
	guestIds, err := s.roomRepo.GetGuestIds(ctx, roomId)
	if err != nil {
		return nil, err
	}

	guests := make([]Guest, 0, len(guestIds))
	for _, guestId := range guestIds {
		guest, err := s.roomRepo.GetGuest(ctx, &room.GetGuestParams{
			GuestId: guestId,
			RoomId:  roomId,
		})
		if err != nil {
			return nil, err
		}

		guests = append(guests, Guest{
			Id:          guestId,
			Name:        guest.Name,
			JoinedAt:    guest.JoinedAt,
			IsConnected: guest.IsConnected,
		})
	}

	return guests, nil
}

func (s service) getQueue(ctx context.Context, roomId string) ([]QueueEntry, error) {
	entryIds, err := s.roomRepo.GetQueueIds(ctx, roomId)
	if err != nil {
		return nil, err
	}

	entries := make([]QueueEntry, 0, len(entryIds))
	for _, entryId := range entryIds {
		entry, err := s.roomRepo.GetQueueEntry(ctx, &room.GetQueueEntryParams{
			EntryId: entryId,
			RoomId:  roomId,
		})
		if err != nil {
			return nil, err
		}

		entries = append(entries, queueEntryFromRepo(entryId, entry))
	}

	return entries, nil
}

func queueEntryFromRepo(entryId string, entry room.QueueEntry) QueueEntry {
	return QueueEntry{
		Id: entryId,
		Track: Track{
			Title:    entry.Title,
			Artist:   entry.Artist,
			Album:    entry.Album,
			URL:      entry.URL,
			ImageURL: entry.ImageURL,
			Duration: entry.Duration,
		},
		AddedAt: entry.AddedAt,
		AddedBy: entry.AddedBy,
	}
}
