package server

import (
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"mbr/bed"
	"mbr/model"
	"mbr/solver"
)

// jsonConn is the slice of the websocket connection the hub writes to.
// Tests substitute an in-memory recorder.
type jsonConn interface {
	WriteJSON(v interface{}) error
}

// Hub owns the reactor instance behind one client and serializes every
// request against it: the bed core assumes single-writer access, so the
// connection's read loop is the only caller of Handle.
type Hub struct {
	conn jsonConn
	sc   model.Scenario
	mb   *bed.MovingBed
}

// NewHub starts a session from the given scenario, usually the one the
// server loaded at startup.
func NewHub(conn jsonConn, sc model.Scenario) *Hub {
	return &Hub{conn: conn, sc: sc}
}

// Handle dispatches one client message and writes the replies. It returns
// false when the client asked to stop and the connection should close.
func (h *Hub) Handle(msg model.Msg) bool {
	switch msg.Type {
	case model.MsgScenario:
		h.handleScenario(msg)
	case model.MsgBuild:
		h.handleBuild()
	case model.MsgInitialize:
		h.handleInitialize()
	case model.MsgSolve:
		h.handleSolve()
	case model.MsgStop:
		h.send(model.MsgStopped, nil)
		return false
	default:
		h.sendError(fmt.Errorf("unknown message type %q", msg.Type))
	}
	return true
}

// handleScenario overlays the client's scenario onto the current one and
// echoes the result, so the client sees the state the next build will use.
func (h *Hub) handleScenario(msg model.Msg) {
	sc := h.sc
	if err := json.Unmarshal(msg.Content, &sc); err != nil {
		h.sendError(fmt.Errorf("bad scenario payload: %w", err))
		return
	}
	h.sc = sc
	h.mb = nil
	h.send(model.MsgScenario, h.sc)
}

func (h *Hub) handleBuild() {
	cfg, err := bed.ConfigFromScenario(h.sc)
	if err != nil {
		h.sendError(err)
		return
	}
	mb, err := bed.New(cfg)
	if err != nil {
		h.sendError(err)
		return
	}
	mb.ApplyScenario(h.sc)
	mb.ApplyScaling(bed.DefaultScaling())
	h.mb = mb
	h.send(model.MsgBuilt, mb.Summary())
}

func (h *Hub) handleInitialize() {
	if h.mb == nil {
		h.sendError(fmt.Errorf("no model built yet"))
		return
	}
	ph, done := h.relayProgress()
	err := h.mb.Initialize(bed.InitializeOptions{Hub: ph})
	ph.Close()
	<-done
	if err != nil {
		h.sendError(err)
		return
	}
	h.send(model.MsgInitialized, h.mb.Summary())
}

func (h *Hub) handleSolve() {
	if h.mb == nil {
		h.sendError(fmt.Errorf("no model built yet"))
		return
	}
	ph, done := h.relayProgress()
	res, err := h.mb.Solve(solver.Options{
		Tolerance:     1e-8,
		MaxIterations: 60,
		Label:         "final_solve",
		Hub:           ph,
	})
	ph.Close()
	<-done
	if err != nil {
		h.sendError(err)
		return
	}
	if !res.IsOptimal() {
		h.sendError(fmt.Errorf("solve terminated with %s", res.Termination))
		return
	}
	h.send(model.MsgProfiles, h.mb.Profiles())

	var sb strings.Builder
	h.mb.Report(&sb)
	h.send(model.MsgReport, sb.String())
}

// relayProgress forwards solver iteration records to the client until the
// progress hub is closed. The returned channel closes when the relay has
// drained, so handlers can join it before replying.
func (h *Hub) relayProgress() (*solver.Hub, chan struct{}) {
	ph := solver.NewHub(256)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for rec := range ph.Records {
			h.send(model.MsgProgress, rec)
		}
	}()
	return ph, done
}

func (h *Hub) send(msgType string, payload interface{}) {
	msg := model.Msg{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.WithFields(log.Fields{"type": msgType, "error": err}).Error("payload marshal failed")
			return
		}
		msg.Content = data
	}
	if err := h.conn.WriteJSON(&msg); err != nil {
		log.WithFields(log.Fields{"type": msgType, "error": err}).Warn("websocket write failed")
	}
}

func (h *Hub) sendError(err error) {
	log.WithField("error", err).Warn("request failed")
	h.send(model.MsgError, err.Error())
}
