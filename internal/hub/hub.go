// Package hub owns the set of active game rooms, keyed by join code. A single
// goroutine serializes all map access through a typed message inbox.
package hub

import (
	"context"
	"crypto/rand"
	"math/big"

	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/internal/question"
	"github.com/pkeller/movie-trivia/internal/room"
)

type HubMsg interface{ isHubMsg() }

// CreateRoom allocates a fresh code and starts a room for it.
type CreateRoom struct {
	Difficulty question.Difficulty
	Reply      chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	gen    question.Generator
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, gen question.Generator, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		gen:    gen,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code, err := h.freshCode()
				if err != nil {
					h.log.Error("generate game code", zap.Error(err))
					msg.Reply <- nil
					break
				}
				r := room.New(h.ctx, code, msg.Difficulty, h.gen, h.removeLater, h.log)
				h.rooms[code] = r
				h.log.Info("game created", zap.String("game", code))
				msg.Reply <- r

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case RemoveRoom:
				delete(h.rooms, msg.Code)

			case ShutdownHub:
				for _, r := range h.rooms {
					r.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

// removeLater is handed to rooms so an emptied room can take itself out of
// the map. Rooms call it from their own goroutine, so it must go through the
// inbox rather than touch the map directly.
func (h *Hub) removeLater(code string) {
	select {
	case h.inbox <- RemoveRoom{Code: code}:
	case <-h.ctx.Done():
	}
}

// freshCode keeps drawing until it finds a code not already in use. The loop
// runs on the hub goroutine, so the check is race-free.
func (h *Hub) freshCode() (string, error) {
	for {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
	}
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}
