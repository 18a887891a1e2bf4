// Package foodservice is a typed client for the remote TrackNFresh food service.
package foodservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/metrics"
	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

// Client calls the food service over HTTP/JSON. It is safe for concurrent use.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithTimeout bounds each request. Zero leaves the transport default in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("timeout must be >= 0")
		}
		if d > 0 {
			c.http.SetTimeout(d)
		}
		return nil
	}
}

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("food service base url is required")
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json"),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ListAll fetches every item: GET /food/all.
func (c *Client) ListAll(ctx context.Context) ([]model.FoodItem, error) {
	var items []model.FoodItem
	if err := c.do(ctx, "list_all", c.http.R(), http.MethodGet, "/food/all", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.FoodItem{}
	}
	return items, nil
}

// NearestExpiring fetches the item closest to expiry: GET /food/nearest-expiring.
func (c *Client) NearestExpiring(ctx context.Context) (*model.FoodItem, error) {
	var item model.FoodItem
	if err := c.do(ctx, "nearest_expiring", c.http.R(), http.MethodGet, "/food/nearest-expiring", &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Get fetches one item: GET /food/{id}.
func (c *Client) Get(ctx context.Context, id string) (*model.FoodItem, error) {
	if id == "" {
		return nil, fmt.Errorf("get food: %w: id is required", model.ErrValidation)
	}
	var item model.FoodItem
	req := c.http.R().SetPathParam("id", id)
	if err := c.do(ctx, "get", req, http.MethodGet, "/food/{id}", &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByCreator fetches the items created by email: GET /food/my-items?email=.
func (c *Client) ListByCreator(ctx context.Context, email string) ([]model.FoodItem, error) {
	if email == "" {
		return nil, fmt.Errorf("list my items: %w: email is required", model.ErrValidation)
	}
	var items []model.FoodItem
	req := c.http.R().SetQueryParam("email", email)
	if err := c.do(ctx, "list_by_creator", req, http.MethodGet, "/food/my-items", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.FoodItem{}
	}
	return items, nil
}

// AddNote appends a note to an item: PUT /food/update/note/{id}.
func (c *Client) AddNote(ctx context.Context, id, creatorEmail string, note model.Note) error {
	if id == "" {
		return fmt.Errorf("add note: %w: id is required", model.ErrValidation)
	}
	req := c.http.R().
		SetPathParam("id", id).
		SetHeader("Content-Type", "application/json").
		SetBody(model.AddNoteRequest{FoodCreatorEmail: creatorEmail, Note: note})
	return c.do(ctx, "add_note", req, http.MethodPut, "/food/update/note/{id}", nil)
}

// DeleteNote removes a note from an item: DELETE /food/{id}/note with body {note}.
func (c *Client) DeleteNote(ctx context.Context, id string, note model.Note) error {
	if id == "" {
		return fmt.Errorf("delete note: %w: id is required", model.ErrValidation)
	}
	req := c.http.R().
		SetPathParam("id", id).
		SetHeader("Content-Type", "application/json").
		SetBody(model.DeleteNoteRequest{Note: note})
	return c.do(ctx, "delete_note", req, http.MethodDelete, "/food/{id}/note", nil)
}

// AddFood creates an item: POST /food/add. The service may answer with the stored
// document or with an {"insertedId": ...} acknowledgement.
func (c *Client) AddFood(ctx context.Context, item model.FoodItem) (*model.FoodItem, error) {
	item.ID = ""
	var out struct {
		model.FoodItem
		InsertedID string `json:"insertedId"`
	}
	req := c.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(item)
	if err := c.do(ctx, "add_food", req, http.MethodPost, "/food/add", &out); err != nil {
		return nil, err
	}
	created := item
	if out.FoodItem.Title != "" {
		created = out.FoodItem
	}
	if created.ID == "" {
		created.ID = out.InsertedID
	}
	return &created, nil
}

// DeleteFood removes an item: DELETE /food/{id}.
func (c *Client) DeleteFood(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete food: %w: id is required", model.ErrValidation)
	}
	req := c.http.R().SetPathParam("id", id)
	return c.do(ctx, "delete_food", req, http.MethodDelete, "/food/{id}", nil)
}

// HealthPing reports whether the service answers. A 404 from the nearest-expiring
// endpoint (empty inventory) still counts as reachable.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/food/nearest-expiring")
	if err != nil {
		return fmt.Errorf("food service unreachable: %w", err)
	}
	if resp.StatusCode() >= 500 {
		return &HTTPError{Op: "health", StatusCode: resp.StatusCode()}
	}
	return nil
}

// do executes req, maps status codes to errors and decodes a 2xx body into out (if non-nil).
func (c *Client) do(ctx context.Context, op string, req *resty.Request, method, path string, out interface{}) error {
	start := time.Now()
	err := c.exec(ctx, op, req, method, path, out)
	metrics.ObserveFoodCall(op, start, err)

	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("op", op).
		Str("method", method).
		Str("path", path).
		Dur("elapsed", time.Since(start)).
		Msg("food service call")
	return err
}

func (c *Client) exec(ctx context.Context, op string, req *resty.Request, method, path string, out interface{}) error {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	case code < 200 || code > 299:
		return &HTTPError{Op: op, StatusCode: code, Body: strings.TrimSpace(resp.String())}
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
