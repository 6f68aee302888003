package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/api"
	"github.com/brensch/snekgreedy/policy"
	"github.com/brensch/snekgreedy/store"
)

const claimRequest = `{
  "board_size": 8,
  "snake": [{"x":3,"y":4},{"x":2,"y":4},{"x":1,"y":4},{"x":1,"y":5}],
  "rivals": [[{"x":4,"y":8},{"x":5,"y":8},{"x":6,"y":8},{"x":7,"y":8}]],
  "foods": [{"x":5,"y":4}],
  "remaining_rounds": 3
}`

const trappedRequest = `{
  "board_size": 3,
  "snake": [{"x":1,"y":1},{"x":2,"y":1},{"x":2,"y":2},{"x":3,"y":2}],
  "rivals": [[{"x":1,"y":2},{"x":1,"y":3},{"x":2,"y":3},{"x":3,"y":3}]],
  "foods": [{"x":3,"y":1}]
}`

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, cfg alloc.Config, recorder *store.Recorder) *httptest.Server {
	t.Helper()
	s := NewServer(alloc.New(cfg), recorder, log.New(io.Discard), time.Minute)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postDecide(t *testing.T, ts *httptest.Server, body string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/decide", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, alloc.DefaultConfig(), nil)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info api.InfoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, alloc.DefaultMaxRounds, info.MaxRounds)
	assert.Equal(t, 200, info.MaxDepth)
	assert.Equal(t, "fixed:up", info.LastResort)
}

func TestDecide(t *testing.T) {
	ts := newTestServer(t, alloc.DefaultConfig(), nil)

	status, raw := postDecide(t, ts, claimRequest)
	require.Equal(t, http.StatusOK, status, string(raw))

	var resp api.DecideResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, api.DecideResponse{Move: "right", Code: 3, Outcome: "claimed"}, resp)
}

func TestDecide_LastResortPolicy(t *testing.T) {
	ts := newTestServer(t, alloc.Config{LastResort: policy.NoMove{}}, nil)

	status, raw := postDecide(t, ts, trappedRequest)
	require.Equal(t, http.StatusOK, status)

	var resp api.DecideResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, -1, resp.Code)
	assert.Equal(t, "error", resp.Move)
	assert.Equal(t, "none", resp.LastResort)
	assert.False(t, resp.FallbackSafe)
}

func TestDecide_BadRequests(t *testing.T) {
	ts := newTestServer(t, alloc.DefaultConfig(), nil)

	for name, body := range map[string]string{
		"not json":     `{`,
		"short snake":  `{"board_size":8,"snake":[{"x":1,"y":1}]}`,
		"off board":    strings.Replace(claimRequest, `"x":3,"y":4`, `"x":30,"y":4`, 1),
		"zero board":   strings.Replace(claimRequest, `"board_size": 8`, `"board_size": 0`, 1),
		"wrong shapes": `{"board_size":"eight"}`,
	} {
		t.Run(name, func(t *testing.T) {
			status, raw := postDecide(t, ts, body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, string(raw), `"error"`)
		})
	}
}

func TestWebsocketSession(t *testing.T) {
	ts := newTestServer(t, alloc.DefaultConfig(), nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(claimRequest)))
	var resp api.DecideResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "right", resp.Move)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"board_size":0}`)))
	var errResp map[string]string
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Contains(t, errResp["error"], "bad request")

	// The session survives a bad message.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(trappedRequest)))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "up", resp.Move)
	assert.Equal(t, "stalemate", resp.Outcome)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}

func TestDecide_Archives(t *testing.T) {
	dir := t.TempDir()
	recorder, err := store.NewRecorder(store.RecorderConfig{Dir: dir, FlushRows: 10, FlushEvery: time.Hour})
	require.NoError(t, err)
	ts := newTestServer(t, alloc.DefaultConfig(), recorder)

	for i := 0; i < 3; i++ {
		status, _ := postDecide(t, ts, claimRequest)
		require.Equal(t, http.StatusOK, status)
	}
	status, _ := postDecide(t, ts, `{`)
	require.Equal(t, http.StatusBadRequest, status)

	require.NoError(t, recorder.Close())
	require.Len(t, recorder.Files(), 1)

	rows, err := store.ReadDecisionsParquet(recorder.Files()[0])
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Len(t, row.ID, 36)
		assert.Equal(t, int32(3), row.Move)
		assert.Equal(t, int32(3), row.RemainingRounds)
	}
}

func TestLastResortFlags(t *testing.T) {
	lr, closeFn, err := lastResort("down", "")
	require.NoError(t, err)
	closeFn()
	assert.Equal(t, "fixed:down", lr.Name())

	_, _, err = lastResort("sideways", "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "lr.lua")
	require.NoError(t, os.WriteFile(path, []byte("function last_resort(x, y, n, body) return 'left' end"), 0o644))
	lr, closeFn, err = lastResort("none", path)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "script:lr.lua", lr.Name())
	assert.Equal(t, policy.NoMove{}, lr.(*policy.Script).Fallback)
}

