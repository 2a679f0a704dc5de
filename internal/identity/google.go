package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"todo/internal/config"
)

const (
	// DefaultTokenURL is the secure-token endpoint used for refresh.
	DefaultTokenURL = "https://securetoken.googleapis.com/v1/token"

	// APITimeout is the timeout for identity service calls.
	APITimeout = 15 * time.Second

	// defaultTokenLifetime applies when the service omits expiresIn.
	defaultTokenLifetime = time.Hour
)

// errNotConfigured is returned by every call when no API key is set.
var errNotConfigured = &AuthError{
	Message: "identity service not configured (set " + config.EnvIdentityAPIKey + ")",
}

// GoogleProvider implements Provider with the Google Identity Toolkit
// (Firebase Authentication) email/password endpoints.
type GoogleProvider struct {
	svc        *identitytoolkit.Service
	oauth      *oauth2.Config
	httpClient *http.Client
	configured bool
}

// NewGoogleProvider creates a provider from identity settings. httpClient
// may be nil; tests pass one pointing at a fake server.
func NewGoogleProvider(ctx context.Context, cfg config.Identity, httpClient *http.Client) (*GoogleProvider, error) {
	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity service: %w", err)
	}

	tokenURL, err := refreshURL(cfg)
	if err != nil {
		return nil, err
	}

	return &GoogleProvider{
		svc: svc,
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		configured: cfg.APIKey != "",
	}, nil
}

func refreshURL(cfg config.Identity) (string, error) {
	raw := cfg.TokenURL
	if raw == "" {
		raw = DefaultTokenURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid identity token_url: %w", err)
	}
	if cfg.APIKey != "" {
		q := u.Query()
		q.Set("key", cfg.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// SignIn implements Provider.
func (p *GoogleProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if !p.configured {
		return nil, errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := p.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	return &Session{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       expiry(resp.ExpiresIn),
	}, nil
}

// SignUp implements Provider. If the service does not return a token with
// the new account, the account is signed in explicitly.
func (p *GoogleProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if !p.configured {
		return nil, errNotConfigured
	}
	signupCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := p.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(signupCtx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	if resp.IdToken == "" {
		return p.SignIn(ctx, email, password)
	}

	return &Session{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       expiry(resp.ExpiresIn),
	}, nil
}

// Refresh implements Provider using the OAuth2 refresh-token grant.
func (p *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if !p.configured {
		return nil, errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
}

func expiry(expiresIn int64) time.Time {
	d := time.Duration(expiresIn) * time.Second
	if d <= 0 {
		d = defaultTokenLifetime
	}
	return time.Now().Add(d)
}

// wrapError keeps the identity service's message verbatim.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &AuthError{Message: "request timed out", Err: err}
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return &AuthError{Message: gerr.Message, Err: err}
	}
	return &AuthError{Message: err.Error(), Err: err}
}
