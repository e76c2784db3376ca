package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/starstrip/starstrip-planner/internal/api/respond"
	"github.com/starstrip/starstrip-planner/internal/api/validate"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/services"
)

// ProfileHandler is the HTTP face of the snapshot sink.
type ProfileHandler struct {
	svc *services.ProfileService
}

func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type MergeGuestRequest struct {
	UserID  string `json:"userId"`
	GuestID string `json:"guestId"`
}

// GetSnapshot handles GET /api/profiles/{profileKey}/{kind}
func (h *ProfileHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	key, kind, ok := snapshotVars(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Get(r.Context(), key, kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, snap)
}

// PutSnapshot handles PUT /api/profiles/{profileKey}/{kind}. The body is the
// partition itself.
func (h *ProfileHandler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	key, kind, ok := snapshotVars(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || !json.Valid(body) {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	snap, err := h.svc.Put(r.Context(), key, kind, body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, snap)
}

// DeleteSnapshot handles DELETE /api/profiles/{profileKey}/{kind}
func (h *ProfileHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	key, kind, ok := snapshotVars(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), key, kind); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MergeGuest handles POST /api/profiles/merge
func (h *ProfileHandler) MergeGuest(w http.ResponseWriter, r *http.Request) {
	var req MergeGuestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.ProfileKey("userId", req.UserID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.ProfileKey("guestId", req.GuestID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	res, err := h.svc.MergeGuest(r.Context(), req.UserID, req.GuestID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

func snapshotVars(w http.ResponseWriter, r *http.Request) (string, model.SnapshotKind, bool) {
	vars := mux.Vars(r)
	key := vars["profileKey"]
	if err := validate.ProfileKey("profileKey", key); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return "", "", false
	}
	kind, err := validate.Kind(vars["kind"])
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return "", "", false
	}
	return key, kind, true
}
