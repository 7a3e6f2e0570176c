package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/protocol"
	"github.com/kentxun/anymind/internal/timex"
)

const maxBodyBytes = 16 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, protocol.HealthResponse{OK: true})
}

func (s *Server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	var req protocol.SpaceCreateRequest
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	space, secret, err := s.spaces.Create(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "space created", "space_id", space.ID)
	respondJSON(w, http.StatusOK, protocol.SpaceCreateResponse{
		SpaceID:     space.ID,
		SpaceSecret: secret,
		CreatedAt:   timex.Format(space.CreatedAt),
	})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req protocol.PushRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ctx := r.Context()
	if _, err := s.spaces.Authenticate(ctx, req.SpaceID, req.SpaceSecret); err != nil {
		s.fail(w, r, err)
		return
	}

	results, maxRev, err := s.sync.Push(ctx, req.SpaceID, req.DeviceID, toIncoming(req.Changes))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Debug(ctx, "push applied", "space_id", req.SpaceID, "device_id", req.DeviceID, "changes", len(results))
	respondJSON(w, http.StatusOK, protocol.PushResponse{
		Results:      toPushResults(results),
		ServerRevMax: maxRev,
	})
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	var req protocol.PullRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ctx := r.Context()
	if _, err := s.spaces.Authenticate(ctx, req.SpaceID, req.SpaceSecret); err != nil {
		s.fail(w, r, err)
		return
	}

	recs, maxRev, err := s.sync.Pull(ctx, req.SpaceID, req.SinceRev, req.Limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, protocol.PullResponse{
		Changes:      toPullChanges(recs),
		ServerRevMax: maxRev,
	})
}

// fail maps service errors onto HTTP statuses. Internal details are logged,
// not returned.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		respondError(w, http.StatusNotFound, "space not found")
	case errors.Is(err, common.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "invalid space secret")
	default:
		s.logger.Error(r.Context(), "request error", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, protocol.ErrorResponse{Error: message})
}
