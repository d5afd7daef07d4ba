package room

import (
	"context"
	"errors"
	"time"

	"github.com/crossparty/server/internal/repository/room"
	"github.com/crossparty/server/pkg/randstr"
	"github.com/crossparty/server/pkg/retry"
	"github.com/crossparty/server/pkg/wsrouter"
)

var (
	ErrInvalidCode       = errors.New("invalid join code")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomInactive      = errors.New("room is inactive")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrGuestNotFound     = errors.New("guest not found")
	ErrGuestLimitReached = errors.New("guest limit reached")
	ErrQueueLimitReached = errors.New("queue limit reached")
	ErrQueueEmpty        = errors.New("queue is empty")
)

const joinCodeLength = 6

type iRoomRepo interface {
	// room
	SetRoom(context.Context, *room.SetRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	UpdateRoomIsActive(ctx context.Context, roomId string, isActive bool) error
	RemoveRoom(context.Context, string) error
	// join code
	SetJoinCode(context.Context, *room.SetJoinCodeParams) error
	GetRoomIdByJoinCode(context.Context, string) (string, error)
	RemoveJoinCode(context.Context, string) error
	// playback
	IncrRevision(context.Context, string) (int64, error)
	SetPlaybackState(context.Context, *room.SetPlaybackStateParams) error
	GetPlaybackState(context.Context, string) (room.PlaybackState, error)
	// guests
	SetGuest(context.Context, *room.SetGuestParams) error
	GetGuest(context.Context, *room.GetGuestParams) (room.Guest, error)
	GetGuestIds(context.Context, string) ([]string, error)
	RemoveGuest(context.Context, *room.RemoveGuestParams) error
	UpdateGuestIsConnected(context.Context, *room.UpdateGuestIsConnectedParams) error
	// queue
	AddQueueEntry(context.Context, *room.AddQueueEntryParams) error
	GetQueueIds(context.Context, string) ([]string, error)
	GetQueueEntry(context.Context, *room.GetQueueEntryParams) (room.QueueEntry, error)
	GetQueueLength(context.Context, string) (int, error)
	PopQueueHead(context.Context, string) (room.QueueEntry, error)
	// events
	PublishEvent(ctx context.Context, roomId string, payload []byte) error
	SubscribeEvents(ctx context.Context, roomId string) (<-chan []byte, func(), error)
}

type iConnRepo interface {
	Add(*wsrouter.Conn, string) error
	RemoveByParticipantId(string) error
	RemoveByConn(*wsrouter.Conn) error
	GetConn(string) (*wsrouter.Conn, error)
	GetParticipantId(*wsrouter.Conn) (string, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	GuestsLimit int
	QueueLimit  int
	// CodeRetry bounds join-code regeneration on collision.
	CodeRetry retry.Policy
}

type service struct {
	roomRepo    iRoomRepo
	connRepo    iConnRepo
	generator   iGenerator
	guestsLimit int
	queueLimit  int
	codeRetry   retry.Policy
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, cfg *Config) *service {
	s := service{
		roomRepo:    roomRepo,
		connRepo:    connRepo,
		guestsLimit: cfg.GuestsLimit,
		queueLimit:  cfg.QueueLimit,
		codeRetry:   cfg.CodeRetry,
	}

	if s.codeRetry.MaxAttempts == 0 {
		s.codeRetry = retry.Policy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond, Jitter: 10 * time.Millisecond}
	}

	letterBytes := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}
