package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/osmtree/osmtree/pkg/buildinfo"
	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/export"
	"github.com/osmtree/osmtree/pkg/geo"
	"github.com/osmtree/osmtree/pkg/integrations"
	"github.com/osmtree/osmtree/pkg/integrations/nominatim"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
	"github.com/osmtree/osmtree/pkg/jstree"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// searchHit is a place with its list label.
type searchHit struct {
	nominatim.Place
	Label string `json:"label"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInternal, "search is not configured"))
		return
	}
	q := r.URL.Query()
	all, err := boolParam(q.Get("all"), "all")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	refresh, err := boolParam(q.Get("refresh"), "refresh")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	places, err := s.search.Search(r.Context(), q.Get("q"), refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !all {
		places = nominatim.Relations(places)
	}
	hits := make([]searchHit, len(places))
	for i, p := range places {
		hits[i] = searchHit{Place: p, Label: p.Label()}
	}
	writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleRelation(w http.ResponseWriter, r *http.Request) {
	detail := overpass.Detail(r.URL.Query().Get("detail"))
	if detail == "" {
		detail = overpass.DetailTags
	}
	if !detail.Valid() {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid detail: %q (must be tags, body or geom)", detail))
		return
	}
	e, err := s.lookup(r.Context(), chi.URLParam(r, "id"), detail)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	e, err := s.lookup(r.Context(), chi.URLParam(r, "id"), overpass.DetailGeometry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fc := geo.Convert([]overpass.Element{*e})
	data, err := fc.MarshalJSON()
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode geojson"))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// lookup fetches one relation, sharing in-flight requests for the same id
// and detail.
func (s *Server) lookup(ctx context.Context, id string, detail overpass.Detail) (*overpass.Element, error) {
	if err := apperrors.ValidateRelationID(id); err != nil {
		return nil, err
	}
	if s.relations == nil {
		return nil, apperrors.New(apperrors.ErrCodeInternal, "relation lookup is not configured")
	}
	v, err, shared := s.group.Do(id+":"+string(detail), func() (any, error) {
		resp, err := s.relations.FetchRelations(context.WithoutCancel(ctx), []string{id}, detail, false)
		if err != nil {
			return nil, err
		}
		e, ok := overpass.Index(resp)[id]
		if !ok {
			return nil, fmt.Errorf("relation %s: %w", id, integrations.ErrEmptyResult)
		}
		return e, nil
	})
	if shared {
		log.FromContext(ctx).Debug("shared relation lookup", "id", id, "detail", detail)
	}
	if err != nil {
		return nil, err
	}
	return v.(*overpass.Element), nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := export.Options{
		Structure: q.Get("structure"),
		Format:    q.Get("format"),
		Include:   q.Get("include"),
		Logger:    log.FromContext(r.Context()),
	}
	var err error
	if opts.Strict, err = boolParam(q.Get("strict"), "strict"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Refresh, err = boolParam(q.Get("refresh"), "refresh"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.LegacyContentType, err = boolParam(q.Get("legacy_mime"), "legacy_mime"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	widget, err := jstree.Decode(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), jstree.ToTree(widget), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", res.ContentType+"; charset=utf-8")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	h.Set("X-Export-ID", res.ID)
	h.Set("X-Export-Records", strconv.Itoa(res.Stats.Records))
	if len(res.Orphans) > 0 {
		h.Set("X-Export-Orphans", strings.Join(res.Orphans, ","))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func boolParam(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
	}
	return b, nil
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      apperrors.Code `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
}

// statusOf maps an error to an HTTP status and code.
func statusOf(err error) (int, apperrors.Code) {
	code := apperrors.GetCode(err)
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, apperrors.ErrCodeInvalidInput
	case apperrors.IsInvalid(err):
		return http.StatusBadRequest, code
	case code == apperrors.ErrCodeStructural:
		return http.StatusUnprocessableEntity, code
	case code == apperrors.ErrCodeEmptyResult, code == apperrors.ErrCodeNotFound,
		errors.Is(err, integrations.ErrEmptyResult), errors.Is(err, integrations.ErrNotFound):
		if code == "" {
			code = apperrors.ErrCodeNotFound
		}
		return http.StatusNotFound, code
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, apperrors.ErrCodeNetwork
	case code == apperrors.ErrCodeNetwork, errors.Is(err, integrations.ErrNetwork):
		return http.StatusBadGateway, apperrors.ErrCodeNetwork
	case code == apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests, code
	}
	return http.StatusInternalServerError, apperrors.ErrCodeInternal
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	logger := log.FromContext(r.Context())
	if status >= 500 {
		logger.Error("request failed", "status", status, "err", err)
	} else {
		logger.Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   apperrors.UserMessage(err),
		RequestID: w.Header().Get(RequestIDHeader),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
