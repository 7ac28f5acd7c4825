package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"

	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/andriandrian/lifeline-admin/internal/validation"
)

// Resource names as they appear in API paths.
const (
	ResourceUser            = "user"
	ResourceHospital        = "hospital"
	ResourceDonationRequest = "donationRequest"
	ResourceDonation        = "donation"
	ResourceNews            = "news"
	ResourceEvent           = "event"
	ResourceReward          = "reward"
	ResourceFAQ             = "faq"
)

// Resource is the list/detail/create/update/delete surface shared by every entity.
type Resource[T any] struct {
	c    *Client
	name string
}

func NewResource[T any](c *Client, name string) *Resource[T] {
	return &Resource[T]{c: c, name: name}
}

func (c *Client) Users() *Resource[models.User] { return NewResource[models.User](c, ResourceUser) }

func (c *Client) Hospitals() *Resource[models.Hospital] {
	return NewResource[models.Hospital](c, ResourceHospital)
}

func (c *Client) DonationRequests() *Resource[models.DonationRequest] {
	return NewResource[models.DonationRequest](c, ResourceDonationRequest)
}

func (c *Client) Donations() *Resource[models.Donation] {
	return NewResource[models.Donation](c, ResourceDonation)
}

func (c *Client) News() *Resource[models.News] { return NewResource[models.News](c, ResourceNews) }

func (c *Client) Events() *Resource[models.Event] { return NewResource[models.Event](c, ResourceEvent) }

func (c *Client) Rewards() *Resource[models.Reward] {
	return NewResource[models.Reward](c, ResourceReward)
}

func (c *Client) FAQs() *Resource[models.FAQ] { return NewResource[models.FAQ](c, ResourceFAQ) }

func (r *Resource[T]) Name() string {
	return r.name
}

func (r *Resource[T]) path(action string) string {
	return "/api/v1/" + r.name + "/" + action
}

func (r *Resource[T]) pathID(action string, id int64) string {
	return r.path(action) + "/" + strconv.FormatInt(id, 10)
}

// List fetches every record; filtering and paging happen client-side.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.doJSON(ctx, http.MethodGet, r.path("list"), nil, &out); err != nil {
		return nil, fmt.Errorf("client.List(%s): %w", r.name, err)
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodGet, r.pathID("detail", id), nil, &out); err != nil {
		return nil, fmt.Errorf("client.Get(%s): %w", r.name, err)
	}
	return &out, nil
}

// Create stamps the current operator onto authored records and validates before sending.
func (r *Resource[T]) Create(ctx context.Context, v *T) (*T, error) {
	if err := r.prepare(v); err != nil {
		return nil, fmt.Errorf("client.Create(%s): %w", r.name, err)
	}

	var out T
	if err := r.c.doJSON(ctx, http.MethodPost, r.path("create"), v, &out); err != nil {
		return nil, fmt.Errorf("client.Create(%s): %w", r.name, err)
	}
	return &out, nil
}

func (r *Resource[T]) Update(ctx context.Context, id int64, v *T) (*T, error) {
	if err := r.prepare(v); err != nil {
		return nil, fmt.Errorf("client.Update(%s): %w", r.name, err)
	}

	var out T
	if err := r.c.doJSON(ctx, http.MethodPut, r.pathID("update", id), v, &out); err != nil {
		return nil, fmt.Errorf("client.Update(%s): %w", r.name, err)
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if err := r.c.doJSON(ctx, http.MethodDelete, r.pathID("delete", id), nil, nil); err != nil {
		return fmt.Errorf("client.Delete(%s): %w", r.name, err)
	}
	return nil
}

// UpdateStatus applies a lifecycle transition, stamping the operator as updatedBy.
func (r *Resource[T]) UpdateStatus(ctx context.Context, id int64, change models.StatusChange) error {
	if change.UpdatedBy == 0 {
		if me, ok := r.c.Identity(); ok {
			change.UpdatedBy = me.ID
		}
	}
	if err := validation.Struct(&change); err != nil {
		return fmt.Errorf("client.UpdateStatus(%s): %w", r.name, err)
	}
	if err := r.c.doJSON(ctx, http.MethodPatch, r.pathID("updateStatus", id), change, nil); err != nil {
		return fmt.Errorf("client.UpdateStatus(%s): %w", r.name, err)
	}
	return nil
}

// Upload is an image attached to a multipart create.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CreateWithImage sends v as multipart form fields plus a required image part.
func (r *Resource[T]) CreateWithImage(ctx context.Context, v *T, img *Upload) (*T, error) {
	if err := r.prepare(v); err != nil {
		return nil, fmt.Errorf("client.CreateWithImage(%s): %w", r.name, err)
	}
	if img == nil || img.Content == nil {
		err := &validation.Error{Fields: map[string]string{"image": "Image is required"}}
		return nil, fmt.Errorf("client.CreateWithImage(%s): %w", r.name, err)
	}

	body, contentType, err := encodeMultipart(v, img)
	if err != nil {
		return nil, fmt.Errorf("client.CreateWithImage(%s): %w", r.name, err)
	}

	var out T
	if err := r.c.doRequest(ctx, http.MethodPost, r.path("create"), bytes.NewReader(body), contentType, &out); err != nil {
		return nil, fmt.Errorf("client.CreateWithImage(%s): %w", r.name, err)
	}
	return &out, nil
}

func (r *Resource[T]) prepare(v *T) error {
	if a, ok := any(v).(models.Authored); ok {
		if me, ok := r.c.Identity(); ok {
			a.StampAuthor(me.ID)
		}
	}
	return validation.Struct(v)
}

// Server-assigned fields never go into a form.
var skipFormFields = map[string]bool{"id": true, "createdAt": true, "image": true}

func encodeMultipart(v any, img *Upload) ([]byte, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("marshal body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, "", fmt.Errorf("marshal body: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range keys {
		if skipFormFields[k] {
			continue
		}
		var value string
		switch f := fields[k].(type) {
		case string:
			value = f
		case json.Number:
			value = f.String()
		case bool:
			value = strconv.FormatBool(f)
		default:
			continue
		}
		if err := w.WriteField(k, value); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("image", img.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, img.Content); err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
