package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/deck-hub/internal/auth"
	"github.com/sakif/deck-hub/internal/service"
)

// FolderHandler serves the folder tree endpoints.
type FolderHandler struct {
	folders *service.FolderService
}

func NewFolderHandler(folders *service.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

type createFolderRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	ParentID string `json:"parentId"`
}

// HandleCreate creates a folder, optionally nested under a parent.
//
// HTTP: POST /api/folders
func (h *FolderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.folders.Create(r.Context(), userID, req.Name, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

// HandleList returns the user's folders as nested trees with their decks.
//
// HTTP: GET /api/folders
func (h *FolderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	folders, err := h.folders.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folders)
}

// HandleGet returns one folder with its immediate children and decks.
//
// HTTP: GET /api/folders/{folderID}
func (h *FolderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	folder, err := h.folders.Get(r.Context(), userID, chi.URLParam(r, "folderID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

type updateFolderRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	ParentID *string `json:"parentId"`
}

// HandleUpdate renames or moves a folder. An explicit empty parentId moves it
// to the top level; moves into the folder's own subtree are rejected.
//
// HTTP: PATCH /api/folders/{folderID}
func (h *FolderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.folders.Update(r.Context(), userID, chi.URLParam(r, "folderID"), service.FolderUpdate{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

// HandleDelete deletes a folder. A folder that still has contents is refused
// with 409 unless ?cascade=true, which removes the whole folder subtree and
// moves the decks inside it to the top level.
//
// HTTP: DELETE /api/folders/{folderID}?cascade=true
func (h *FolderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	cascade := r.URL.Query().Get("cascade") == "true"

	if err := h.folders.Delete(r.Context(), userID, chi.URLParam(r, "folderID"), cascade); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
