package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crossparty/server/internal/service/room"
	"github.com/crossparty/server/pkg/rest"
)

type createRoomRequest struct {
	HostWriterId string `json:"host_writer_id" validate:"required"`
}

type createRoomResponse struct {
	RoomId   string `json:"room_id"`
	JoinCode string `json:"join_code"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.InfoContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.InfoContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		HostWriterId: req.HostWriterId,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to create room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "could not create room"})
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createRoomResponse{
		RoomId:   resp.RoomId,
		JoinCode: resp.JoinCode,
	}})
}

type resolveCodeResponse struct {
	RoomId string `json:"room_id"`
}

func (c controller) resolveCode(w http.ResponseWriter, r *http.Request) {
	joinCode := chi.URLParam(r, "join-code")

	roomId, err := c.roomService.ResolveCode(r.Context(), joinCode)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrInvalidCode):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		case errors.Is(err, room.ErrRoomInactive):
			rest.WriteJSON(w, http.StatusGone, rest.Envelope{"error": "room is closed"})
		default:
			c.logger.WarnContext(r.Context(), "failed to resolve code", "error", err)
			rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "could not resolve code"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": resolveCodeResponse{
		RoomId: roomId,
	}})
}
