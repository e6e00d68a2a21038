package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPConfig points at a Keycloak-style admin API: a password-grant
// token endpoint on the master realm and the user admin endpoints of
// the application realm.
type HTTPConfig struct {
	BaseURL  string
	Realm    string
	ClientID string
	Username string
	Password string
}

// HTTPDirectory resolves identities against the external directory
// service. Failures to reach it are storage-class errors; a clean
// "no such user" answer maps to ErrUserNotFound.
type HTTPDirectory struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTP(cfg HTTPConfig) *HTTPDirectory {
	return &HTTPDirectory{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *HTTPDirectory) UserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	token, err := d.adminToken(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	q := url.Values{"email": {email}, "exact": {"true"}}
	endpoint := fmt.Sprintf("%s/admin/realms/%s/users?%s",
		strings.TrimRight(d.cfg.BaseURL, "/"), d.cfg.Realm, q.Encode())

	var users []struct {
		ID string `json:"id"`
	}
	if err := d.getJSON(ctx, endpoint, token, &users); err != nil {
		return uuid.Nil, err
	}
	if len(users) == 0 {
		return uuid.Nil, ErrUserNotFound
	}
	id, err := uuid.Parse(users[0].ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("directory returned malformed user id: %w", err)
	}
	return id, nil
}

func (d *HTTPDirectory) EmailByUserID(ctx context.Context, id uuid.UUID) (string, error) {
	token, err := d.adminToken(ctx)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/admin/realms/%s/users/%s",
		strings.TrimRight(d.cfg.BaseURL, "/"), d.cfg.Realm, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("directory request: unexpected status %d", resp.StatusCode)
	}

	var user struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("directory response: %w", err)
	}
	if user.Email == "" {
		return "", ErrUserNotFound
	}
	return user.Email, nil
}

func (d *HTTPDirectory) adminToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {d.cfg.ClientID},
		"username":   {d.cfg.Username},
		"password":   {d.cfg.Password},
	}
	endpoint := strings.TrimRight(d.cfg.BaseURL, "/") + "/realms/master/protocol/openid-connect/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("directory token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("directory token request: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("directory token response: %w", err)
	}
	return payload.AccessToken, nil
}

func (d *HTTPDirectory) getJSON(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory request: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
