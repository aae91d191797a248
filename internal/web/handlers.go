package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/justestif/go-spotify-alarm/internal/alarm"
	"github.com/justestif/go-spotify-alarm/internal/catalog"
	"github.com/justestif/go-spotify-alarm/internal/collection"
	"github.com/justestif/go-spotify-alarm/internal/logger"
)

// Handlers contains HTTP handlers for the alarm API.
type Handlers struct {
	coll      *collection.Collection
	refresher Refresher
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(coll *collection.Collection, refresher Refresher) *Handlers {
	return &Handlers{
		coll:      coll,
		refresher: refresher,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// TrackResult is a track match in a search response.
type TrackResult struct {
	PlaylistID   string        `json:"playlist_id"`
	PlaylistName string        `json:"playlist_name"`
	Track        catalog.Track `json:"track"`
	AddedAt      time.Time     `json:"added_at"`
}

// AddAlarmRequest is the body of POST /api/alarms.
type AddAlarmRequest struct {
	Date       *time.Time `json:"date"`
	PlaylistID string     `json:"playlist_id"`
	TrackID    string     `json:"track_id"`
}

// Playlists lists the playlists of the current catalog (GET /api/playlists).
func (h *Handlers) Playlists(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.coll.Playlists())
}

// Tracks searches the catalog (GET /api/tracks?filter=&q=). The filter
// defaults to track names.
func (h *Handlers) Tracks(w http.ResponseWriter, r *http.Request) {
	mode := collection.FilterTracks
	if f := r.URL.Query().Get("filter"); f != "" {
		parsed, err := collection.ParseFilterType(f)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, err)
			return
		}
		mode = parsed
	}

	snapshot := h.coll.Snapshot()
	matches := collection.Filter(snapshot, mode, r.URL.Query().Get("q"))

	names := make(map[string]string, snapshot.Len())
	for _, p := range snapshot.Playlists() {
		names[p.ID] = p.Name
	}

	results := make([]TrackResult, len(matches))
	for i, m := range matches {
		results[i] = TrackResult{
			PlaylistID:   m.PlaylistID,
			PlaylistName: names[m.PlaylistID],
			Track:        m.Track,
			AddedAt:      m.AddedAt,
		}
	}
	render.JSON(w, r, results)
}

// ListAlarms lists the stored alarms (GET /api/alarms).
func (h *Handlers) ListAlarms(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.coll.Alarms(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("listing alarms failed", zap.Error(err))
		renderError(w, r, http.StatusInternalServerError, errors.New("listing alarms failed"))
		return
	}
	render.JSON(w, r, alarms)
}

// AddAlarm schedules an alarm (POST /api/alarms). A request without a
// date is accepted and ignored.
func (h *Handlers) AddAlarm(w http.ResponseWriter, r *http.Request) {
	var req AddAlarmRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	if req.Date == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	playlist, track, ok := h.coll.FindTrack(req.PlaylistID, req.TrackID)
	if !ok {
		renderError(w, r, http.StatusNotFound, errors.New("track not found in playlist"))
		return
	}

	a := alarm.New(*req.Date, playlist, track)
	if err := h.coll.AddAlarm(r.Context(), a, req.Date); err != nil {
		logger.FromContext(r.Context()).Error("saving alarm failed", zap.Error(err))
		renderError(w, r, http.StatusInternalServerError, errors.New("saving alarm failed"))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, a)
}

// RemoveAlarm deletes the alarm at the given RFC 3339 date (DELETE /api/alarms/{date}).
func (h *Handlers) RemoveAlarm(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.RFC3339, chi.URLParam(r, "date"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, errors.New("date must be RFC 3339"))
		return
	}

	removed, err := h.coll.RemoveAlarm(r.Context(), date)
	switch {
	case err != nil:
		logger.FromContext(r.Context()).Error("removing alarm failed", zap.Error(err))
		renderError(w, r, http.StatusInternalServerError, errors.New("removing alarm failed"))
	case !removed:
		renderError(w, r, http.StatusNotFound, errors.New("no alarm at that date"))
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Refresh refetches the catalog now (POST /api/catalog/refresh).
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.refresher.Refresh(r.Context())
	switch {
	case err == nil:
		render.JSON(w, r, result)
	case errors.Is(err, catalog.ErrRefreshTooRecent):
		renderError(w, r, http.StatusTooManyRequests, err)
	default:
		logger.FromContext(r.Context()).Warn("catalog refresh failed", zap.Error(err))
		renderError(w, r, http.StatusBadGateway, errors.New("catalog refresh failed"))
	}
}

func renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}
