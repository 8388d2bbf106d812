package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgraph/internal/graph"
	"socialgraph/internal/physics"
	"socialgraph/internal/render"
)

// maxBody caps uploaded documents and patches.
const maxBody = 8 << 20

type healthResponse struct {
	Status   string `json:"status"`
	Alias    string `json:"alias"`
	Vertices int    `json:"vertices"`
	Steps    uint64 `json:"steps"`
	Paused   bool   `json:"paused"`
	Clients  int    `json:"clients"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Alias:    s.session.Alias(),
		Vertices: s.session.Len(),
		Steps:    s.session.Steps(),
		Paused:   s.session.Paused(),
	}
	if s.hub != nil {
		resp.Clients = s.hub.Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := graph.Encode(w, s.session.Document()); err != nil {
		s.logger.Warn("writing graph", zap.Error(err))
	}
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := graph.Decode(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.session.Replace(doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportGraph(w http.ResponseWriter, r *http.Request) {
	doc := s.session.Document()
	alias := doc.Metadata.Alias

	var buf bytes.Buffer
	var err error
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		format = "json"
		w.Header().Set("Content-Type", "application/json")
		err = graph.Encode(&buf, doc)
	case "atom":
		w.Header().Set("Content-Type", "application/atom+xml")
		err = doc.WriteAtom(&buf, s.baseURL)
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = render.WriteChart(&buf, s.session.Frame(), doc.Metadata.Title)
	default:
		s.writeError(w, r, badRequest{fmt.Sprintf("unknown export format %q", format)})
		return
	}
	if err != nil {
		w.Header().Del("Content-Type")
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", alias+"."+format))
	_, _ = buf.WriteTo(w)
}

type saveResponse struct {
	Alias    string `json:"alias"`
	Vertices int    `json:"vertices"`
}

func (s *Server) saveGraph(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "no database configured"})
		return
	}
	doc := s.session.Document()
	if err := graph.SaveDocument(s.db, doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("graph saved", zap.String("alias", doc.Metadata.Alias), zap.Int("vertices", len(doc.Vertices)))
	writeJSON(w, http.StatusOK, saveResponse{Alias: doc.Metadata.Alias, Vertices: len(doc.Vertices)})
}

// decodeBody reads a JSON body into v. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		return badRequest{fmt.Sprintf("reading body: %v", err)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return badRequest{fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

func (s *Server) addVertex(w http.ResponseWriter, r *http.Request) {
	var pos physics.Vector2
	if err := decodeBody(w, r, &pos); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.session.AddVertex(pos)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) updateVertex(w http.ResponseWriter, r *http.Request) {
	var patch graph.VertexPatch
	if err := decodeBody(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.session.UpdateVertex(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) removeVertex(w http.ResponseWriter, r *http.Request) {
	if err := s.session.RemoveVertex(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type linkRequest struct {
	Target string `json:"target"`
}

func (s *Server) addLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Target == "" {
		s.writeError(w, r, badRequest{"target is required"})
		return
	}
	if err := s.session.AddLink(chi.URLParam(r, "id"), req.Target); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryPoint reads the x and y query parameters, in world coordinates.
func queryPoint(r *http.Request) (physics.Vector2, error) {
	q := r.URL.Query()
	x, err := strconv.ParseFloat(q.Get("x"), 64)
	if err != nil {
		return physics.Vector2{}, badRequest{"x must be a number"}
	}
	y, err := strconv.ParseFloat(q.Get("y"), 64)
	if err != nil {
		return physics.Vector2{}, badRequest{"y must be a number"}
	}
	return physics.Vec(x, y), nil
}

type pickResponse struct {
	ID    string `json:"id"`
	Found bool   `json:"found"`
}

// pick selects the vertex under the point; a miss clears the selection.
func (s *Server) pick(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, ok := s.session.Select(p)
	writeJSON(w, http.StatusOK, pickResponse{ID: id, Found: ok})
}

func (s *Server) nearest(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, ok := s.session.Nearest(p)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "graph is empty"})
		return
	}
	writeJSON(w, http.StatusOK, pickResponse{ID: id, Found: true})
}

func (s *Server) frame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Frame())
}

type simulationState struct {
	Paused bool           `json:"paused"`
	Steps  uint64         `json:"steps"`
	Params physics.Params `json:"params"`
}

func (s *Server) state() simulationState {
	return simulationState{Paused: s.session.Paused(), Steps: s.session.Steps(), Params: s.session.Params()}
}

func (s *Server) pause(w http.ResponseWriter, r *http.Request) {
	s.session.Pause()
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	s.session.Resume()
	writeJSON(w, http.StatusOK, s.state())
}

// setParams overlays the posted fields on the current physics params.
func (s *Server) setParams(w http.ResponseWriter, r *http.Request) {
	p := s.session.Params()
	if err := decodeBody(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.session.SetParams(p); err != nil {
		s.writeError(w, r, badRequest{err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

// websocket streams every rendered frame to the client until it disconnects.
// Incoming messages are read and discarded so control frames are handled.
func (s *Server) websocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "frame streaming disabled"})
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	client := s.hub.Register(conn)

	if data, err := json.Marshal(s.session.Frame()); err == nil {
		client.Send(data)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.Unregister(client)
			return
		}
	}
}
