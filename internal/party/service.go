package party

import (
	"context"

	roomsvc "github.com/crossparty/server/internal/service/room"
)

type iRoomService interface {
	PushPlaybackState(context.Context, *roomsvc.PushPlaybackStateParams) (roomsvc.PushPlaybackStateResponse, error)
	DequeueNext(context.Context, *roomsvc.DequeueNextParams) (roomsvc.DequeueNextResponse, error)
	GetRoomState(ctx context.Context, roomId string) (roomsvc.RoomState, error)
	SubscribeRoom(ctx context.Context, roomId string) (<-chan roomsvc.Event, func(), error)
}
