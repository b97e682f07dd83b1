// Package http implements the remote record-store contracts against the
// platform's record-store service.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ae-inbuator/second-story-wishlist/internal/remote"
	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
	"github.com/ae-inbuator/second-story-wishlist/pkg/httpclient"
)

const serviceName = "record-store"

// Doer is the outbound HTTP capability the client needs. Both the plain
// retrying client and its circuit-breaker wrapper satisfy it.
type Doer interface {
	Get(ctx context.Context, url string) (*http.Response, error)
	Post(ctx context.Context, url string, contentType string, body io.Reader) (*http.Response, error)
	Delete(ctx context.Context, url string) (*http.Response, error)
}

// Client talks to the record-store service over HTTP. It implements both
// remote.Store and remote.EventResolver.
type Client struct {
	baseURL string
	http    Doer
}

// NewClient creates a record-store client for the given base URL.
func NewClient(baseURL string, hc Doer) *Client {
	return &Client{
		baseURL: baseURL,
		http:    hc,
	}
}

// transportError wraps transport-level failures as network-class errors.
// Errors that already carry a classification, like the breaker's converted
// 5xx responses, pass through untouched; a rejected-while-open request does
// not, so it lands in the network class like any other outage.
func transportError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Network(err)
}

// List returns all wishlist records for the guest within the event.
func (c *Client) List(ctx context.Context, eventID, guestID string) ([]remote.Record, error) {
	u := fmt.Sprintf("%s/api/v1/records/wishlists?eventId=%s&guestId=%s",
		c.baseURL, url.QueryEscape(eventID), url.QueryEscape(guestID))

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data []remote.Record `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode wishlist records: %w", err)
	}
	return body.Data, nil
}

// Count returns how many wishlist records exist for the product within the event.
func (c *Client) Count(ctx context.Context, eventID, productID string) (int, error) {
	u := fmt.Sprintf("%s/api/v1/records/wishlists/count?eventId=%s&productId=%s",
		c.baseURL, url.QueryEscape(eventID), url.QueryEscape(productID))

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return 0, transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode record count: %w", err)
	}
	return body.Data.Count, nil
}

// Insert creates a wishlist record and returns the server-assigned fields.
func (c *Client) Insert(ctx context.Context, rec remote.Record) (remote.Record, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return remote.Record{}, fmt.Errorf("marshal wishlist record: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/api/v1/records/wishlists", "application/json", bytes.NewReader(payload))
	if err != nil {
		return remote.Record{}, transportError(err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return remote.Record{}, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data remote.Record `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return remote.Record{}, fmt.Errorf("decode inserted record: %w", err)
	}
	return body.Data, nil
}

// Delete removes a wishlist record by its canonical id.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.http.Delete(ctx, c.baseURL+"/api/v1/records/wishlists/"+url.PathEscape(id))
	if err != nil {
		return transportError(err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	_ = resp.Body.Close()
	return nil
}

// ResolveActiveEventID returns the identity of the currently active event.
func (c *Client) ResolveActiveEventID(ctx context.Context) (string, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/api/v1/events/active")
	if err != nil {
		return "", transportError(err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return "", apperrors.NoActiveEvent()
	}
	if resp.StatusCode != http.StatusOK {
		return "", httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode active event: %w", err)
	}
	if body.Data.ID == "" {
		return "", apperrors.NoActiveEvent()
	}
	return body.Data.ID, nil
}
