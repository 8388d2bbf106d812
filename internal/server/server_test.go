package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgraph/internal/db"
	"socialgraph/internal/graph"
	"socialgraph/internal/metrics"
	"socialgraph/internal/physics"
	"socialgraph/internal/render"
	"socialgraph/internal/session"
)

type fixture struct {
	srv     *httptest.Server
	session *session.Context
	hub     *render.Hub
	db      *db.DB
	ids     []string
}

func newFixture(t *testing.T, withDB bool) *fixture {
	t.Helper()
	doc := graph.DefaultDocument("oss", time.Date(2013, 2, 26, 10, 0, 0, 0, time.UTC))
	a, err := doc.AddVertex(physics.Vec(-100, 0))
	require.NoError(t, err)
	b, err := doc.AddVertex(physics.Vec(100, 0))
	require.NoError(t, err)
	require.NoError(t, doc.AddLink(a.ID, b.ID))

	sess, err := session.New(doc, session.Options{Viewport: physics.Viewport{Width: 800, Height: 600}})
	require.NoError(t, err)
	hub := render.NewHub(nil, nil, 8, 0)
	sess.AddRenderer(hub)

	f := &fixture{session: sess, hub: hub, ids: []string{a.ID, b.ID}}
	opts := Options{
		Session: sess,
		Hub:     hub,
		Metrics: metrics.NewCollector("test"),
		BaseURL: "http://example.org",
	}
	if withDB {
		f.db, err = db.OpenDB(filepath.Join(t.TempDir(), "graphs.db"))
		require.NoError(t, err)
		opts.DB = f.db
		t.Cleanup(func() { f.db.Close() })
	}
	f.srv = httptest.NewServer(New(opts).Handler())
	t.Cleanup(func() {
		hub.Close()
		f.srv.Close()
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.do(t, "GET", "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var h healthResponse
	require.NoError(t, json.Unmarshal(body, &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "oss", h.Alias)
	assert.Equal(t, 2, h.Vertices)
}

func TestFrame_PollingDoesNotAdvanceSequence(t *testing.T) {
	f := newFixture(t, false)

	var first, again render.Frame
	_, body := f.do(t, "GET", "/api/frame", "")
	require.NoError(t, json.Unmarshal(body, &first))
	f.do(t, "GET", "/health", "")
	f.do(t, "GET", "/health", "")
	_, body = f.do(t, "GET", "/api/frame", "")
	require.NoError(t, json.Unmarshal(body, &again))
	assert.Equal(t, first.Seq, again.Seq)

	ticked := f.session.Tick()
	assert.Equal(t, first.Seq+1, ticked.Seq)
	_, body = f.do(t, "GET", "/api/frame", "")
	require.NoError(t, json.Unmarshal(body, &again))
	assert.Equal(t, ticked.Seq, again.Seq)
}

func TestGraph_GetAndReplace(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "GET", "/api/graph", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := graph.DecodeBytes(body)
	require.NoError(t, err)
	assert.Len(t, doc.Vertices, 2)

	resp, body = f.do(t, "PUT", "/api/graph", `{"metadata":{},"vertices":{}}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e errorBody
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Contains(t, e.Problems, "vertices: must be an array")

	resp, _ = f.do(t, "PUT", "/api/graph", `{"metadata":{"alias":"fresh"},"vertices":[{"id":"a","title":"A"}]}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "fresh", f.session.Alias())
	assert.Len(t, f.session.Frame().Nodes, 1)
}

func TestGraph_Export(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"json", "application/json", `"alias": "oss"`},
		{"atom", "application/atom+xml", "<feed"},
		{"html", "text/html; charset=utf-8", "echarts"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, body := f.do(t, "GET", "/api/graph/export?format="+tt.format, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, resp.Header.Get("Content-Disposition"), "oss."+tt.format)
			assert.Contains(t, string(body), tt.contains)
		})
	}

	resp, _ := f.do(t, "GET", "/api/graph/export?format=svg", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVertices_Editing(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "POST", "/api/vertices", `{"x":0,"y":150}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var v graph.Vertex
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "#3", v.Title)
	require.NotNil(t, v.Position)
	assert.Equal(t, 150.0, v.Position.Y)

	resp, body = f.do(t, "PATCH", "/api/vertices/"+v.ID, `{"title":"Kernel","type":"Project"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "Kernel", v.Title)
	assert.Equal(t, "Project", v.Type)

	resp, _ = f.do(t, "PATCH", "/api/vertices/"+v.ID, `{"type":"Planet"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, "PATCH", "/api/vertices/"+v.ID, `{"type":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, "PATCH", "/api/vertices/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, "POST", "/api/vertices/"+v.ID+"/links", `{"target":"`+f.ids[0]+`"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, f.session.Frame().Edges, 2)
	resp, _ = f.do(t, "POST", "/api/vertices/"+v.ID+"/links", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, "DELETE", "/api/vertices/"+f.ids[0], "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, f.session.Frame().Edges)
	resp, _ = f.do(t, "DELETE", "/api/vertices/"+f.ids[0], "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPickAndNearest(t *testing.T) {
	f := newFixture(t, false)

	var p pickResponse
	resp, body := f.do(t, "GET", "/api/pick?x=-95&y=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &p))
	assert.True(t, p.Found)
	assert.Equal(t, f.ids[0], p.ID)
	assert.Equal(t, f.ids[0], f.session.Selected())

	_, body = f.do(t, "GET", "/api/pick?x=0&y=0", "")
	require.NoError(t, json.Unmarshal(body, &p))
	assert.False(t, p.Found)
	assert.Empty(t, f.session.Selected())

	_, body = f.do(t, "GET", "/api/nearest?x=30&y=0", "")
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, f.ids[1], p.ID)

	resp, _ = f.do(t, "GET", "/api/pick?x=left&y=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSimulationControls(t *testing.T) {
	f := newFixture(t, false)

	var st simulationState
	_, body := f.do(t, "POST", "/api/simulation/pause", "")
	require.NoError(t, json.Unmarshal(body, &st))
	assert.True(t, st.Paused)
	assert.True(t, f.session.Paused())

	_, body = f.do(t, "POST", "/api/simulation/resume", "")
	require.NoError(t, json.Unmarshal(body, &st))
	assert.False(t, st.Paused)

	resp, body := f.do(t, "PUT", "/api/simulation/params", `{"margin_factor":4.5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 90.0, st.Params.ObjectsMargin())
	assert.Equal(t, 20.0, st.Params.ObjectsDensity)

	resp, body = f.do(t, "PUT", "/api/simulation/params", `{"margin_factor":9,"objects_density":30}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 270.0, st.Params.ObjectsMargin(), "margin follows density")

	resp, _ = f.do(t, "PUT", "/api/simulation/params", `{"time_step_ms":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveGraph(t *testing.T) {
	f := newFixture(t, true)
	f.session.Advance(10, 0)

	resp, body := f.do(t, "POST", "/api/graph/save", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	stored, err := graph.LoadDocument(f.db, "oss")
	require.NoError(t, err)
	live := f.session.Document()
	require.Len(t, stored.Vertices, 2)
	assert.Equal(t, live.Vertices[0].Position, stored.Vertices[0].Position)
	assert.Equal(t, []string{f.ids[1]}, stored.Vertices[0].Links)

	nodb := newFixture(t, false)
	resp, _ = nodb.do(t, "POST", "/api/graph/save", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebsocket_StreamsFrames(t *testing.T) {
	f := newFixture(t, false)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var fr render.Frame
	require.NoError(t, conn.ReadJSON(&fr))
	assert.Len(t, fr.Nodes, 2)
	first := fr.Seq

	require.Eventually(t, func() bool { return f.hub.Len() == 1 }, time.Second, 5*time.Millisecond)
	f.session.Tick()
	require.NoError(t, conn.ReadJSON(&fr))
	assert.Greater(t, fr.Seq, first)
	assert.Len(t, fr.Edges, 1)
}

func TestWebsocket_RejectsForeignOrigin(t *testing.T) {
	f := newFixture(t, false)
	s := New(Options{Session: f.session, Hub: f.hub, CORSOrigins: []string{"http://allowed.example"}})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, s.checkOrigin(req))
	req.Header.Set("Origin", "http://allowed.example")
	assert.True(t, s.checkOrigin(req))
}

func TestMetricsAndCORS(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, "GET", "/health", "")

	resp, body := f.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",route="/health",status="200"} 1`)

	req, err := http.NewRequest("OPTIONS", f.srv.URL+"/api/graph", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	pre, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	pre.Body.Close()
	assert.Equal(t, "*", pre.Header.Get("Access-Control-Allow-Origin"))
}
