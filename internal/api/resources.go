package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/huelink-core/internal/relay"
	"github.com/nerrad567/huelink-core/internal/resource"
)

// resourceSummary is the JSON shape a mirrored resource is served as.
type resourceSummary struct {
	ID           string               `json:"id"`
	Kind         resource.Kind        `json:"kind"`
	Name         string               `json:"name"`
	Owner        *resource.Ref        `json:"owner,omitempty"`
	Services     []resource.Ref       `json:"services,omitempty"`
	Children     []resource.Ref       `json:"children,omitempty"`
	Metadata     resource.Metadata    `json:"metadata"`
	ProductData  resource.ProductData `json:"product_data,omitempty"`
	Capabilities []string             `json:"capabilities"`
	Commands     []string             `json:"commands"`
	Values       map[string]any       `json:"values"`
}

func summarize(n *resource.Node) resourceSummary {
	return resourceSummary{
		ID:           n.ID(),
		Kind:         n.Kind(),
		Name:         n.Name(),
		Owner:        n.Owner(),
		Services:     n.Services(),
		Children:     n.Children(),
		Metadata:     n.Metadata(),
		ProductData:  n.ProductData(),
		Capabilities: n.Capabilities(),
		Commands:     n.Commands(),
		Values:       n.Values(),
	}
}

// handleListResources returns all mirrored resources, optionally
// filtered by kind.
//
// GET /api/v1/resources?kind=light
func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Registry()
	if reg == nil {
		writeJSON(w, http.StatusOK, map[string]any{"resources": []resourceSummary{}})
		return
	}

	var nodes []*resource.Node
	if kind := r.URL.Query().Get("kind"); kind != "" {
		if !resource.Kind(kind).Known() {
			writeBadRequest(w, "unknown resource kind: "+kind)
			return
		}
		nodes = reg.ByKind(resource.Kind(kind))
	} else {
		nodes = reg.All()
	}

	summaries := make([]resourceSummary, 0, len(nodes))
	for _, n := range nodes {
		summaries = append(summaries, summarize(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": summaries})
}

// handleGetResource returns one resource by id.
//
// GET /api/v1/resources/{id}
func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Registry()
	if reg == nil {
		writeNotFound(w, "mirror not ready")
		return
	}

	id := chi.URLParam(r, "id")
	n, ok := reg.Get(id)
	if !ok {
		writeNotFound(w, "resource not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, summarize(n))
}

// handleIssueCommand dispatches a command to a resource. The body uses
// the same command-message format as the MQTT intake. Dispatch is
// fire-and-forget; 202 means handed to the bridge, not applied.
//
// POST /api/v1/resources/{id}/commands
func (s *Server) handleIssueCommand(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Registry()
	if reg == nil {
		writeNotFound(w, "mirror not ready")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body")
		return
	}

	cmd, err := relay.ParseCommand(body)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := reg.IssueCommand(r.Context(), id, cmd); err != nil {
		switch {
		case isNotFound(err):
			writeNotFound(w, err.Error())
		default:
			writeBadRequest(w, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"dispatched": cmd.Name,
		"id":         id,
	})
}

// handleGetHistory returns recorded property changes for a resource.
//
// GET /api/v1/resources/{id}/history?key=on&limit=50
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	key := r.URL.Query().Get("key")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := s.history.GetHistory(r.Context(), id, key, limit)
	if err != nil {
		s.logger.Error("history query failed", "id", id, "error", err)
		writeInternalError(w, "history query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// handleListKinds returns the kinds the mirror constructs nodes for.
//
// GET /api/v1/kinds
func (s *Server) handleListKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"kinds": resource.AllKinds()})
}

// handleListColors returns the color palette names accepted by color
// commands.
//
// GET /api/v1/colors
func (s *Server) handleListColors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"colors": resource.ColorNames()})
}

// isNotFound reports whether the error is the registry's not-found sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, resource.ErrNotFound)
}
