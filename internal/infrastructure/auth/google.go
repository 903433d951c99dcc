package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
)

// GoogleVerifier проверяет Google ID token через endpoint tokeninfo.
type GoogleVerifier struct {
	client   *http.Client
	endpoint string
	clientID string
}

func NewGoogleVerifier(cfg *cfg.GoogleCfg) *GoogleVerifier {
	return &GoogleVerifier{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.TokenInfoURL,
		clientID: cfg.ClientID,
	}
}

type tokenInfo struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*usecase.GoogleIdentity, error) {
	u, err := url.Parse(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo url: %w", err)
	}
	q := u.Query()
	q.Set("id_token", idToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo: %w", err)
	}

	if g.clientID != "" && info.Aud != g.clientID {
		return nil, fmt.Errorf("token audience %q does not match client id", info.Aud)
	}
	if info.EmailVerified != "true" {
		return nil, fmt.Errorf("google email is not verified")
	}

	return &usecase.GoogleIdentity{
		UID:           info.Sub,
		Email:         info.Email,
		Name:          info.Name,
		EmailVerified: true,
	}, nil
}
