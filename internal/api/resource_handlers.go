package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-viper/mapstructure/v2"

	"github.com/andriandrian/lifeline-admin/internal/database"
	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/andriandrian/lifeline-admin/internal/validation"
)

type resourceConfig struct {
	image bool
}

type resourceOption func(*resourceConfig)

// withImage makes create a multipart upload with a required image part.
func withImage() resourceOption {
	return func(c *resourceConfig) { c.image = true }
}

// resourceHandler serves list/detail/create/update/delete for one entity.
type resourceHandler[T any] struct {
	s     *Server
	table *database.Table[T]
	cfg   resourceConfig
}

func mountResource[T any](r chi.Router, s *Server, table *database.Table[T], extra func(chi.Router), opts ...resourceOption) {
	h := &resourceHandler[T]{s: s, table: table}
	for _, opt := range opts {
		opt(&h.cfg)
	}

	r.Route("/"+table.Entity, func(r chi.Router) {
		r.Get("/list", h.List)
		r.Get("/detail/{id}", h.Detail)
		if table.CanCreate() {
			r.Post("/create", h.Create)
		}
		r.Put("/update/{id}", h.Update)
		r.Delete("/delete/{id}", h.Delete)
		if extra != nil {
			extra(r)
		}
	})
}

// @Summary      List records
// @Description  Returns every record of the entity, newest first. Filtering and paging are done by the dashboard.
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "user, hospital, donationRequest, donation, news, event, reward or faq"
// @Success      200     {object}  Envelope
// @Failure      401     {object}  Envelope "Unauthorized"
// @Failure      500     {object}  Envelope "Internal Server Error"
// @Router       /{entity}/list [get]
func (h *resourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.table.List(r.Context(), h.s.store.GetPool())
	if err != nil {
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// @Summary      Get one record
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "Entity name"
// @Param        id      path      int     true  "Record ID"
// @Success      200     {object}  Envelope
// @Failure      400     {object}  Envelope "Invalid ID"
// @Failure      404     {object}  Envelope "Not found"
// @Router       /{entity}/detail/{id} [get]
func (h *resourceHandler[T]) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	h.respondWith(w, r, id, http.StatusOK)
}

func (h *resourceHandler[T]) respondWith(w http.ResponseWriter, r *http.Request, id int64, code int) {
	item, err := h.table.Get(r.Context(), h.s.store.GetPool(), id)
	if err != nil {
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}
	if item == nil {
		h.s.writeStoreError(w, r, database.ErrNotFound, h.table.Entity)
		return
	}
	writeJSON(w, code, item)
}

// @Summary      Create a record
// @Description  JSON body for most entities; news and event take multipart/form-data with a required image file.
// @Tags         resources
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "hospital, donation, news, event, reward or faq"
// @Success      201     {object}  Envelope
// @Failure      400     {object}  Envelope "Validation failed"
// @Failure      409     {object}  Envelope "Conflict"
// @Router       /{entity}/create [post]
func (h *resourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var (
		v        T
		imageKey string
		err      error
	)
	if h.cfg.image {
		imageKey, err = h.decodeMultipart(w, r, &v)
	} else {
		err = decodeJSON(r, &v)
	}
	if err != nil {
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}

	if a, ok := any(&v).(models.Authored); ok {
		a.StampAuthor(claims.UserID)
	}
	if err := validation.Struct(&v); err != nil {
		h.discardImage(imageKey)
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}

	var id int64
	change := database.Change{Entity: h.table.Entity, Action: database.ActionCreated}
	err = h.s.store.Record(r.Context(), claims.UserID, change, func(q *database.Queries) (int64, error) {
		id, err = h.table.Create(r.Context(), q.DB(), &v)
		return id, err
	})
	if err != nil {
		h.discardImage(imageKey)
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}

	h.respondWith(w, r, id, http.StatusCreated)
}

// @Summary      Update a record
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "Entity name"
// @Param        id      path      int     true  "Record ID"
// @Success      200     {object}  Envelope
// @Failure      400     {object}  Envelope "Validation failed"
// @Failure      404     {object}  Envelope "Not found"
// @Router       /{entity}/update/{id} [put]
func (h *resourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	var v T
	if err := decodeJSON(r, &v); err != nil {
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}
	if a, ok := any(&v).(models.Authored); ok {
		a.StampAuthor(claims.UserID)
	}
	if err := validation.Struct(&v); err != nil {
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}

	change := database.Change{Entity: h.table.Entity, Action: database.ActionUpdated}
	err := h.s.store.Record(r.Context(), claims.UserID, change, func(q *database.Queries) (int64, error) {
		return id, h.table.Update(r.Context(), q.DB(), id, &v)
	})
	if err != nil {
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}

	h.respondWith(w, r, id, http.StatusOK)
}

// @Summary      Delete a record
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "Entity name"
// @Param        id      path      int     true  "Record ID"
// @Success      200     {object}  Envelope
// @Failure      404     {object}  Envelope "Not found"
// @Failure      409     {object}  Envelope "Still referenced"
// @Router       /{entity}/delete/{id} [delete]
func (h *resourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	change := database.Change{Entity: h.table.Entity, Action: database.ActionDeleted}
	err := h.s.store.Record(r.Context(), claims.UserID, change, func(q *database.Queries) (int64, error) {
		return id, h.table.Delete(r.Context(), q.DB(), id)
	})
	if err != nil {
		h.s.writeStoreError(w, r, err, h.table.Entity)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &validation.Error{Fields: map[string]string{"body": "Invalid request body"}}
	}
	return nil
}

// decodeMultipart stores the image part and decodes the remaining form fields
// into v. It returns the stored image key.
func (h *resourceHandler[T]) decodeMultipart(w http.ResponseWriter, r *http.Request, v *T) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.s.config.Storage.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.s.config.Storage.MaxUploadBytes); err != nil {
		return "", &validation.Error{Fields: map[string]string{"body": "Invalid multipart form"}}
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return "", &validation.Error{Fields: map[string]string{"image": "Image is required"}}
	}
	defer file.Close()

	fields := make(map[string]any, len(r.MultipartForm.Value))
	for k, vals := range r.MultipartForm.Value {
		if len(vals) > 0 {
			fields[k] = vals[0]
		}
	}
	if err := decodeForm(fields, v); err != nil {
		return "", &validation.Error{Fields: map[string]string{"body": err.Error()}}
	}

	key, err := h.s.storage.SaveImage(file)
	if err != nil {
		return "", err
	}
	if img, ok := any(v).(models.Illustrated); ok {
		img.SetImage(key)
	}
	return key, nil
}

func (h *resourceHandler[T]) discardImage(key string) {
	if key == "" {
		return
	}
	if err := h.s.storage.Delete(key); err != nil {
		h.s.log.WithError(err).WithField("image", key).Warn("failed to remove orphaned image")
	}
}

// decodeForm converts string form values into the JSON-tagged fields of out.
func decodeForm(fields map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			emptyToNilHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(fields)
}

// emptyToNilHook leaves optional pointer fields nil when the form sent "".
func emptyToNilHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to.Kind() == reflect.Ptr && data == "" {
		return nil, nil
	}
	return data, nil
}
