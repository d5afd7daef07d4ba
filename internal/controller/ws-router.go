package controller

import (
	"github.com/crossparty/server/pkg/wsrouter"
)

func (c controller) getGuestWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggerMw())

	mux.Handle("ALIVE", c.handleAlive)
	mux.Handle("PUSH_STATE", c.handlePushState)
	mux.Handle("ENQUEUE_TRACK", c.handleEnqueueTrack)
	mux.Handle("LEAVE", c.handleLeave)

	return mux
}

func (c controller) getHostWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggerMw())

	mux.Handle("ALIVE", c.handleAlive)
	mux.Handle("PUSH_STATE", c.handlePushState)
	mux.Handle("ENQUEUE_TRACK", c.handleEnqueueTrack)
	mux.Handle("KICK_GUEST", c.handleKickGuest)
	mux.Handle("DRAIN_QUEUE", c.handleDrainQueue)
	mux.Handle("CLOSE_ROOM", c.handleCloseRoom)

	return mux
}
