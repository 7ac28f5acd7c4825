package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andriandrian/lifeline-admin/internal/storage"
)

// @Summary      Get an uploaded image
// @Tags         images
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        key  path      string  true  "Image key returned in the record's image field"
// @Success      200  {file}    file
// @Failure      400  {object}  Envelope "Invalid key"
// @Failure      404  {object}  Envelope "Image not found"
// @Router       /images/{key} [get]
func (s *Server) GetImageHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	file, err := s.storage.Open(key)
	switch {
	case errors.Is(err, storage.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "Invalid image key")
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "image not found")
		return
	case err != nil:
		s.writeStoreError(w, r, err, "image")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		s.writeStoreError(w, r, err, "image")
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=86400")
	http.ServeContent(w, r, key, info.ModTime(), file)
}
