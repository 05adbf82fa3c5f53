package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suvariii/masisie/internal/config"
	"github.com/Suvariii/masisie/internal/engine"
	"github.com/Suvariii/masisie/internal/hub"
)

func newTestStack(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	cfg := &config.Config{
		AppEnv:             "test",
		Port:               "0",
		SnapshotLimit:      250,
		MaxFrameBytes:      1 << 20,
		BasketballSportIDs: []string{"2", "3"},
	}

	clock := clockwork.NewRealClock()
	eng := engine.New(clock, cfg.BasketballSportIDs, cfg.SnapshotLimit)
	t.Cleanup(eng.Stop)
	h := hub.New(clock, cfg.MaxFrontendClients)
	t.Cleanup(h.Stop)

	srv := NewServer(cfg, eng, h)
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)

	return srv, ts
}

func dialWS(t *testing.T, ts *httptest.Server, path string) *ws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *ws.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal(msg, &result))
	return result
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestStack(t)

	for _, path := range []string{"/", "/health"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "OK\n", string(body), path)
	}
}

func TestLivenessEndpoint(t *testing.T) {
	_, ts := newTestStack(t)

	resp, err := http.Get(ts.URL + "/health/live")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestVersionEndpoint(t *testing.T) {
	_, ts := newTestStack(t)

	resp, err := http.Get(ts.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestStack(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFrontend_ReceivesWelcomeSnapshot(t *testing.T) {
	_, ts := newTestStack(t)

	conn := dialWS(t, ts, "/frontend")
	msg := readJSON(t, conn)

	assert.Equal(t, "matches", msg["type"])
	assert.Empty(t, msg["matches"])
}

func TestIngest_PipelineBroadcastsEventsThenSnapshot(t *testing.T) {
	_, ts := newTestStack(t)

	frontend := dialWS(t, ts, "/frontend")
	readJSON(t, frontend) // welcome snapshot; registration complete

	producer := dialWS(t, ts, "/ingest")
	frame := `{"kind":"swarm_recv","payload":{"code":0,"data":{"game":{"g1":{
		"team1_name":"Alpha","team2_name":"Beta",
		"info":{"score":"1-0","current_game_time":"23","league":{"name":"Cup"}},
		"stats":{"attack":{"team1_value":5,"team2_value":1}}
	}}}}}`
	require.NoError(t, producer.WriteMessage(ws.TextMessage, []byte(frame)))

	// events first: attack delta 6 combined, soccer burst doubles it
	events := readJSON(t, frontend)
	require.Equal(t, "events", events["type"])
	list := events["events"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "g1", first["game_id"])
	assert.Equal(t, "ATTACK", first["etype"])
	assert.Equal(t, float64(1), first["team"])

	// then the snapshot
	matches := readJSON(t, frontend)
	require.Equal(t, "matches", matches["type"])
	summaries := matches["matches"].([]any)
	require.Len(t, summaries, 1)
	summary := summaries[0].(map[string]any)
	assert.Equal(t, "g1", summary["game_id"])
	assert.Equal(t, "Alpha vs Beta", summary["title"])
	assert.Equal(t, float64(1), summary["score1"])
	assert.Equal(t, float64(0), summary["score2"])
	assert.Equal(t, "23", summary["minute"])
	assert.Equal(t, "Cup", summary["tournament"])
	assert.Equal(t, "Soccer", summary["sport"])
}

func TestIngest_MalformedFramesDroppedSilently(t *testing.T) {
	_, ts := newTestStack(t)

	frontend := dialWS(t, ts, "/frontend")
	readJSON(t, frontend)

	producer := dialWS(t, ts, "/ingest")

	// neither frame is an envelope; no broadcast may result
	require.NoError(t, producer.WriteMessage(ws.TextMessage, []byte("not json")))
	require.NoError(t, producer.WriteMessage(ws.TextMessage, []byte(`{"hello":"world"}`)))

	// an empty envelope still triggers the snapshot heartbeat, which is the
	// next message the frontend sees - proof the bad frames were dropped
	// and the producer connection survived
	require.NoError(t, producer.WriteMessage(ws.TextMessage, []byte(`{"code":0,"data":{}}`)))

	msg := readJSON(t, frontend)
	assert.Equal(t, "matches", msg["type"])
	assert.Empty(t, msg["matches"])
}

func TestFrontend_InboundMessagesIgnored(t *testing.T) {
	_, ts := newTestStack(t)

	frontend := dialWS(t, ts, "/frontend")
	readJSON(t, frontend)

	// subscriber chatter is read and discarded, the connection stays live
	require.NoError(t, frontend.WriteMessage(ws.TextMessage, []byte("hello?")))

	producer := dialWS(t, ts, "/ingest")
	require.NoError(t, producer.WriteMessage(ws.TextMessage, []byte(`{"code":0,"data":{}}`)))

	msg := readJSON(t, frontend)
	assert.Equal(t, "matches", msg["type"])
}

func TestIngest_StateRetainedAcrossProducers(t *testing.T) {
	srv, ts := newTestStack(t)

	producer := dialWS(t, ts, "/ingest")
	frame := `{"code":0,"data":{"game":{"g1":{}}}}`
	require.NoError(t, producer.WriteMessage(ws.TextMessage, []byte(frame)))

	waitFor(t, func() bool { return srv.engine.MatchCount() == 1 })
	producer.Close()

	// a new producer finds the previous state intact
	producer2 := dialWS(t, ts, "/ingest")
	require.NoError(t, producer2.WriteMessage(ws.TextMessage, []byte(`{"code":0,"data":{}}`)))
	waitFor(t, func() bool { return srv.engine.MatchCount() == 1 })
}

func TestIngest_OversizedFrameDropsProducer(t *testing.T) {
	srv, ts := newTestStack(t)
	srv.config.MaxFrameBytes = 64

	producer := dialWS(t, ts, "/ingest")
	big := fmt.Sprintf(`{"code":0,"data":{"pad":%q}}`, strings.Repeat("x", 128))
	require.NoError(t, producer.WriteMessage(ws.TextMessage, []byte(big)))

	// the server abandons the connection rather than buffer the frame
	require.NoError(t, producer.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := producer.ReadMessage(); err != nil {
			break
		}
	}
	assert.Equal(t, 0, srv.engine.MatchCount())
}

func TestFrontend_OversizedFrameDisconnectsSubscriber(t *testing.T) {
	srv, ts := newTestStack(t)
	srv.config.MaxFrameBytes = 64

	frontend := dialWS(t, ts, "/frontend")
	readJSON(t, frontend) // welcome snapshot; registration complete

	big := strings.Repeat("x", 128)
	require.NoError(t, frontend.WriteMessage(ws.TextMessage, []byte(big)))

	// the liveness read loop drops the connection instead of buffering the
	// frame; the subscriber leaves the hub
	require.NoError(t, frontend.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := frontend.ReadMessage(); err != nil {
			break
		}
	}
	waitFor(t, func() bool { return srv.hub.ClientCount() == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
