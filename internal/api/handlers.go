package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/danielpatrickdp/viewspace/internal/explore"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region handler
// Handler exposes an exploration store over HTTP.
type Handler struct {
	Store     *explore.Store
	MaxGroups int  // default for POST /api/cluster
	UseRemote bool // default for POST /api/cluster
}

// NewHandler creates a handler with clustering defaults.
func NewHandler(store *explore.Store, maxGroups int, useRemote bool) *Handler {
	return &Handler{Store: store, MaxGroups: maxGroups, UseRemote: useRemote}
}

// NewRouter builds the router with logging, recovery and CORS middleware.
func NewRouter(h *Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the exploration API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/api/state", h.GetState)

	r.Post("/api/page/next", h.NextPage)
	r.Post("/api/page/last", h.LastPage)
	r.Post("/api/page/{n}", h.GoToPage)

	r.Get("/api/likes", h.GetLikes)
	r.Post("/api/likes/{page}", h.ToggleLike)

	r.Post("/api/cluster", h.Cluster)
	r.Post("/api/focus/{index}", h.SelectFocus)

	r.Get("/api/associations", h.GetAssociations)
	r.Post("/api/associations/open", h.OpenAssociations)
	r.Post("/api/associations/close", h.CloseAssociations)
	r.Post("/api/associations/{index}/select", h.SelectAssociation)
}

// #endregion handler

// #region state
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// GetState returns the full exploration state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Snapshot())
}

// #endregion state

// #region paging
type pageResponse struct {
	Page  int  `json:"page"`
	Total int  `json:"total"`
	Liked bool `json:"liked"`
}

func (h *Handler) pageResult(page int) pageResponse {
	st := h.Store.Snapshot()
	return pageResponse{Page: page, Total: len(st.ViewSpaces), Liked: h.Store.IsLiked(page)}
}

// GoToPage moves to a 0-based page, wrapping out-of-range values.
func (h *Handler) GoToPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	writeJSON(w, http.StatusOK, h.pageResult(h.Store.GoToPage(n)))
}

func (h *Handler) NextPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pageResult(h.Store.NextPage()))
}

func (h *Handler) LastPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pageResult(h.Store.LastPage()))
}

// #endregion paging

// #region likes
type likeRequest struct {
	Schema viewspace.Schema `json:"schema"`
}

// ToggleLike toggles the like for a page. The schema snapshot comes from
// the request body, or from the page's candidate when the body has none.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	p, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}

	var req likeRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Schema == nil {
		st := h.Store.Snapshot()
		if p >= 0 && p < len(st.ViewSpaces) {
			req.Schema = st.ViewSpaces[p].Schema
		}
	}

	liked := h.Store.LikeIt(p, req.Schema)
	writeJSON(w, http.StatusOK, map[string]interface{}{"page": p, "liked": liked})
}

func (h *Handler) GetLikes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"likes": h.Store.Likes()})
}

// #endregion likes

// #region cluster
type clusterRequest struct {
	MaxGroups *int  `json:"max_groups"`
	UseRemote *bool `json:"use_remote"`
}

// Cluster re-clusters the candidates. A failed run answers 503 with the
// degraded status; the previous page list stays in place.
func (h *Handler) Cluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	maxGroups, useRemote := h.MaxGroups, h.UseRemote
	if req.MaxGroups != nil {
		maxGroups = *req.MaxGroups
	}
	if req.UseRemote != nil {
		useRemote = *req.UseRemote
	}
	if maxGroups < 0 {
		writeError(w, http.StatusBadRequest, "max_groups must be >= 0")
		return
	}

	report, err := h.Store.ClusterMeasures(r.Context(), maxGroups, useRemote)
	if err != nil {
		if errors.Is(err, explore.ErrClusteringFailed) {
			log.Printf("[API] cluster: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"error":  err.Error(),
				"status": h.Store.Snapshot().Status,
				"report": report,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report": report,
		"status": h.Store.Snapshot().Status,
	})
}

// #endregion cluster

// #region focus-associations
func (h *Handler) SelectFocus(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	if !h.Store.SelectFocus(idx) {
		writeError(w, http.StatusNotFound, "no candidate with that index")
		return
	}
	focus, _ := h.Store.Focus()
	writeJSON(w, http.StatusOK, map[string]interface{}{"focus": focus})
}

func (h *Handler) OpenAssociations(w http.ResponseWriter, r *http.Request) {
	h.Store.OpenAssociations()
	writeJSON(w, http.StatusOK, map[string]bool{"open": true})
}

func (h *Handler) CloseAssociations(w http.ResponseWriter, r *http.Request) {
	h.Store.CloseAssociations()
	writeJSON(w, http.StatusOK, map[string]bool{"open": false})
}

// GetAssociations ranks subspaces related to the current focus.
func (h *Handler) GetAssociations(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"open":    h.Store.Snapshot().AssociationOpen,
		"results": h.Store.Associations(),
	}
	if focus, ok := h.Store.Focus(); ok {
		resp["focus"] = focus
	}
	writeJSON(w, http.StatusOK, resp)
}

// SelectAssociation jumps to the page showing a candidate. Candidates that
// are not navigable answer 404 and leave the page unchanged.
func (h *Handler) SelectAssociation(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	if !h.Store.SelectAssociation(idx) {
		writeError(w, http.StatusNotFound, "candidate is not on any page")
		return
	}
	writeJSON(w, http.StatusOK, h.pageResult(h.Store.Snapshot().CurrentPage))
}

// #endregion focus-associations

// #region helpers
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeOptional decodes a JSON body; an empty body leaves v untouched.
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// #endregion helpers
