package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mbr/bed"
	"mbr/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorderConn captures every message the hub writes.
type recorderConn struct {
	msgs []model.Msg
}

func (c *recorderConn) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var m model.Msg
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func (c *recorderConn) last() model.Msg {
	return c.msgs[len(c.msgs)-1]
}

func newTestHub() (*Hub, *recorderConn) {
	conn := &recorderConn{}
	return NewHub(conn, bed.DefaultScenario()), conn
}

func send(t *testing.T, h *Hub, msgType string, payload interface{}) bool {
	t.Helper()
	msg := model.Msg{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Content = data
	}
	return h.Handle(msg)
}

func TestScenarioOverlayAndEcho(t *testing.T) {
	h, conn := newTestHub()

	cont := send(t, h, model.MsgScenario, map[string]interface{}{"finite_elements": 4})
	assert.True(t, cont)
	require.Len(t, conn.msgs, 1)
	require.Equal(t, model.MsgScenario, conn.last().Type)

	var sc model.Scenario
	require.NoError(t, json.Unmarshal(conn.last().Content, &sc))
	assert.Equal(t, 4, sc.FiniteElements)
	// untouched fields keep the startup scenario
	assert.Equal(t, 6.5, sc.BedDiameter)
	assert.InDelta(t, 128.20513, sc.Gas.FlowMol, 1e-9)
}

func TestBuildRepliesWithSquareSummary(t *testing.T) {
	h, conn := newTestHub()

	send(t, h, model.MsgScenario, map[string]interface{}{"finite_elements": 3})
	send(t, h, model.MsgBuild, nil)
	require.Equal(t, model.MsgBuilt, conn.last().Type)

	var sum model.BuildSummary
	require.NoError(t, json.Unmarshal(conn.last().Content, &sum))
	assert.Equal(t, 0, sum.DegreesOfFreedom)
	assert.Greater(t, sum.Variables, 0)
	assert.Equal(t, sum.Variables, sum.Constraints+14) // geometry + two inlet ports fixed
}

func TestBuildRejectsBadScenario(t *testing.T) {
	h, conn := newTestHub()

	send(t, h, model.MsgScenario, map[string]interface{}{"transformation_method": "spectral"})
	send(t, h, model.MsgBuild, nil)
	assert.Equal(t, model.MsgError, conn.last().Type)
}

func TestScenarioPayloadMustBeJSON(t *testing.T) {
	h, conn := newTestHub()

	h.Handle(model.Msg{Type: model.MsgScenario, Content: json.RawMessage(`{broken`)})
	assert.Equal(t, model.MsgError, conn.last().Type)
}

func TestInitializeNeedsBuild(t *testing.T) {
	h, conn := newTestHub()

	send(t, h, model.MsgInitialize, nil)
	assert.Equal(t, model.MsgError, conn.last().Type)

	send(t, h, model.MsgSolve, nil)
	assert.Equal(t, model.MsgError, conn.last().Type)
}

func TestScenarioChangeDropsBuiltModel(t *testing.T) {
	h, conn := newTestHub()

	send(t, h, model.MsgScenario, map[string]interface{}{"finite_elements": 3})
	send(t, h, model.MsgBuild, nil)
	require.Equal(t, model.MsgBuilt, conn.last().Type)

	send(t, h, model.MsgScenario, map[string]interface{}{"finite_elements": 5})
	send(t, h, model.MsgInitialize, nil)
	assert.Equal(t, model.MsgError, conn.last().Type, "stale model must not be initialized")
}

func TestStopRepliesAndCloses(t *testing.T) {
	h, conn := newTestHub()

	cont := send(t, h, model.MsgStop, nil)
	assert.False(t, cont)
	assert.Equal(t, model.MsgStopped, conn.last().Type)
}

func TestUnknownTypeKeepsSessionAlive(t *testing.T) {
	h, conn := newTestHub()

	cont := send(t, h, "reticulate", nil)
	assert.True(t, cont)
	assert.Equal(t, model.MsgError, conn.last().Type)
}
