package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

type lobby interface {
	ListAvailableRooms() []entity.RoomInfo
}

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
	RoomsHandler(w http.ResponseWriter, _ *http.Request)
}

type handlers struct {
	logger *slog.Logger
	lobby  lobby
}

func NewHandlers(logger *slog.Logger, lobby lobby) Handlers {
	return &handlers{
		logger: logger.With("component", "rest_handlers"),
		lobby:  lobby,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Warn("failed to write ping response", "error", err)
	}
}

// RoomsHandler - the rooms a player can join, same as GET_ROOMS.
func (that *handlers) RoomsHandler(w http.ResponseWriter, _ *http.Request) {
	rooms := that.lobby.ListAvailableRooms()
	if rooms == nil {
		rooms = []entity.RoomInfo{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{"rooms": rooms}); err != nil {
		that.logger.Warn("failed to write rooms response", "error", err)
	}
}
