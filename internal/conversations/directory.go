package conversations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/store"
)

// Property is the slice of a listing this subsystem needs: who owns it and
// what to title the conversation.
type Property struct {
	ID      uint   `json:"id"`
	OwnerID uint   `json:"ownerID"`
	Title   string `json:"title"`
}

// PropertyDirectory supplies property existence and ownership. The listing
// service behind it is external; it is consumed read-only.
type PropertyDirectory interface {
	Property(ctx context.Context, propertyID uint) (*Property, error)
}

// HTTPDirectory resolves properties against the listing service's REST API.
type HTTPDirectory struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPDirectory returns a directory backed by the listing service at
// baseURL.
func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Property fetches one listing. A 404 from the listing service maps to the
// store's NotFound so handlers surface it uniformly.
func (d *HTTPDirectory) Property(ctx context.Context, propertyID uint) (*Property, error) {
	url := fmt.Sprintf("%s/properties/%d", d.BaseURL, propertyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: build request: %w", err)
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: fetch property %d: %w: %w", propertyID, store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("directory: property %d: %w", propertyID, store.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("directory: property %d: unexpected status %d: %w", propertyID, resp.StatusCode, store.ErrUnavailable)
	}

	var prop Property
	if err := json.NewDecoder(resp.Body).Decode(&prop); err != nil {
		return nil, fmt.Errorf("directory: decode property %d: %w", propertyID, err)
	}
	if prop.OwnerID == 0 {
		return nil, fmt.Errorf("directory: property %d has no owner: %w", propertyID, store.ErrNotFound)
	}
	return &prop, nil
}

// StaticDirectory serves a fixed set of properties. Used by tests and
// single-node setups without a listing service.
type StaticDirectory map[uint]Property

// Property looks the listing up in the static set.
func (d StaticDirectory) Property(_ context.Context, propertyID uint) (*Property, error) {
	prop, ok := d[propertyID]
	if !ok {
		return nil, fmt.Errorf("directory: property %d: %w", propertyID, store.ErrNotFound)
	}
	return &prop, nil
}
