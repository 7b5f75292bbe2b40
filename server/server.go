// Package server exposes one reactor session per websocket client. The
// protocol is a flat JSON envelope {type, content}: the client sets a
// scenario, asks for build/initialize/solve, and receives progress records,
// profiles and a report back.
package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"mbr/model"
)

type Server struct {
	addr     string
	scenario model.Scenario
	upgrader websocket.Upgrader
}

// New prepares a server on addr whose sessions start from the given
// scenario.
func New(addr string, sc model.Scenario) *Server {
	return &Server{
		addr:     addr,
		scenario: sc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// serveWs runs one client session: a fresh hub per connection, messages
// handled in arrival order on the read loop.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("error", err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	log.WithField("remote", conn.RemoteAddr()).Info("client connected")

	hub := NewHub(conn, s.scenario)
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			log.WithField("remote", conn.RemoteAddr()).Info("client disconnected")
			return
		}
		if !hub.Handle(msg) {
			return
		}
	}
}

// Serve blocks on the listener; it returns only on listener failure.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	log.WithField("addr", s.addr).Info("moving bed server listening")
	return http.ListenAndServe(s.addr, mux)
}
