package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lunavoice/billing/internal/pkg/env"
)

// User is the slice of the external identity record this service reads. The
// directory owns the entity; we never create or delete users.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Directory lists users from the external identity service. The admin API
// returns bulk pages that are scanned client-side.
type Directory interface {
	ListUsers(ctx context.Context, page, perPage int) ([]User, error)
}

// Client calls the identity service's admin users endpoint with a service
// role key.
type Client struct {
	BaseURL    string
	ServiceKey string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:    strings.TrimRight(env.GetEnv("IDENTITY_API_URL", ""), "/"),
		ServiceKey: strings.TrimSpace(env.GetEnv("IDENTITY_SERVICE_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type listUsersResponse struct {
	Users []User `json:"users"`
}

func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]User, error) {
	if strings.TrimSpace(c.BaseURL) == "" || strings.TrimSpace(c.ServiceKey) == "" {
		return nil, errors.New("IDENTITY_API_URL/IDENTITY_SERVICE_KEY are not configured")
	}
	if page < 1 {
		page = 1
	}

	u, err := url.Parse(c.BaseURL + "/admin/v1/users")
	if err != nil {
		return nil, fmt.Errorf("invalid IDENTITY_API_URL: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity directory returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed listUsersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode identity directory response: %w", err)
	}
	return parsed.Users, nil
}
