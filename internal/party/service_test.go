package party

import (
	"context"
	"sync"

	roomsvc "github.com/crossparty/server/internal/service/room"
)

// fakeRoomService hands out revisions locally and records every write.
// Pushed snapshots are not echoed back; tests feed the event channel
// themselves.
type fakeRoomService struct {
	mu       sync.Mutex
	revision int64
	pushes   []roomsvc.PushPlaybackStateParams
	queue    []roomsvc.QueueEntry
	dequeues int
	state    roomsvc.RoomState
	stateErr error

	events chan roomsvc.Event
}

func newFakeRoomService() *fakeRoomService {
	return &fakeRoomService{events: make(chan roomsvc.Event, 32)}
}

func (f *fakeRoomService) PushPlaybackState(ctx context.Context, params *roomsvc.PushPlaybackStateParams) (roomsvc.PushPlaybackStateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.revision++
	f.pushes = append(f.pushes, *params)

	return roomsvc.PushPlaybackStateResponse{
		Playback: roomsvc.PlaybackState{
			Track:     params.Track,
			IsPlaying: params.IsPlaying,
			Position:  params.Position,
			Timestamp: params.Timestamp,
			Action:    params.Action,
			Revision:  f.revision,
			WriterId:  params.WriterId,
		},
	}, nil
}

func (f *fakeRoomService) DequeueNext(ctx context.Context, params *roomsvc.DequeueNextParams) (roomsvc.DequeueNextResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dequeues++
	if len(f.queue) == 0 {
		return roomsvc.DequeueNextResponse{}, roomsvc.ErrQueueEmpty
	}

	entry := f.queue[0]
	f.queue = f.queue[1:]

	return roomsvc.DequeueNextResponse{Entry: entry}, nil
}

func (f *fakeRoomService) GetRoomState(ctx context.Context, roomId string) (roomsvc.RoomState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stateErr != nil {
		return roomsvc.RoomState{}, f.stateErr
	}

	return f.state, nil
}

func (f *fakeRoomService) SubscribeRoom(ctx context.Context, roomId string) (<-chan roomsvc.Event, func(), error) {
	return f.events, func() {}, nil
}

func (f *fakeRoomService) enqueue(entry roomsvc.QueueEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queue = append(f.queue, entry)
}

func (f *fakeRoomService) setStateErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stateErr = err
}

func (f *fakeRoomService) emit(ev roomsvc.Event) {
	f.events <- ev
}

func (f *fakeRoomService) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.pushes)
}

func (f *fakeRoomService) lastPush() roomsvc.PushPlaybackStateParams {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pushes) == 0 {
		return roomsvc.PushPlaybackStateParams{}
	}

	return f.pushes[len(f.pushes)-1]
}

func (f *fakeRoomService) dequeueCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.dequeues
}
