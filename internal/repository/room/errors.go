package room

import "errors"

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrJoinCodeTaken         = errors.New("join code already taken")
	ErrJoinCodeNotFound      = errors.New("join code not found")
	ErrGuestNotFound         = errors.New("guest not found")
	ErrPlaybackStateNotFound = errors.New("playback state not found")
	ErrQueueEmpty            = errors.New("queue is empty")
	ErrQueueEntryNotFound    = errors.New("queue entry not found")
)
