package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/crossparty/server/internal/service/room"
	"github.com/crossparty/server/pkg/validator"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	ResolveCode(ctx context.Context, joinCode string) (string, error)
	CloseRoom(context.Context, *room.CloseRoomParams) error
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) error
	KickGuest(context.Context, *room.KickGuestParams) (room.KickGuestResponse, error)
	Enqueue(context.Context, *room.EnqueueParams) (room.EnqueueResponse, error)
	DequeueNext(context.Context, *room.DequeueNextParams) (room.DequeueNextResponse, error)
	PushPlaybackState(context.Context, *room.PushPlaybackStateParams) (room.PushPlaybackStateResponse, error)
	GetRoomState(ctx context.Context, roomId string) (room.RoomState, error)
	SubscribeRoom(ctx context.Context, roomId string) (<-chan room.Event, func(), error)
	ConnectParticipant(context.Context, *room.ConnectParticipantParams) error
	DisconnectParticipant(context.Context, *room.DisconnectParticipantParams) error
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	return &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
}
