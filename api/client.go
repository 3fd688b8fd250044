// Package api is the HTTP implementation of the collaborator contracts:
// authentication, identity lookup, registration, and user management
// against the platform's REST backend.
//
// The client is intended to run behind the transport interceptor chain,
// which owns credential attachment and rejection handling; this package
// only shapes requests and decodes responses. Backend failures map onto
// the session layer's error taxonomy: 401 on login becomes
// [authsession.ErrInvalidCredentials], 401 anywhere else becomes
// [authsession.ErrUnauthorized], and 422 bodies decode into
// [authsession.ValidationError] verbatim.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	authsession "github.com/streamvault/authsession"
)

// Client talks to the REST backend. Construct with [New]; the zero value
// is not usable.
type Client struct {
	base     string
	http     *http.Client
	validate *validator.Validate
}

// New returns a Client for the backend rooted at baseURL. A nil
// httpClient falls back to [http.DefaultClient]; production wiring passes
// a client whose transport is the interceptor chain.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// tokenResponse is the login payload: the bearer credential plus an
// optional partial identity.
type tokenResponse struct {
	AccessToken string                `json:"access_token"`
	TokenType   string                `json:"token_type"`
	User        *authsession.Identity `json:"user,omitempty"`
}

// Authenticate implements [authsession.Authenticator]. The backend takes
// the OAuth2 password form, where the "username" field carries the email.
func (c *Client) Authenticate(ctx context.Context, identifier, secret string) (authsession.LoginResult, error) {
	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/auth/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return authsession.LoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return authsession.LoginResult{}, err
	}
	defer drain(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized:
		return authsession.LoginResult{}, fmt.Errorf("%w: %s",
			authsession.ErrInvalidCredentials, detailMessage(resp))
	default:
		return authsession.LoginResult{}, decodeError(resp)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return authsession.LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	if body.AccessToken == "" {
		return authsession.LoginResult{}, errors.New("login response missing access token")
	}

	return authsession.LoginResult{Credential: body.AccessToken, Identity: body.User}, nil
}

// WhoAmI implements [authsession.Authenticator]: it resolves the identity
// behind the credential the transport attaches.
func (c *Client) WhoAmI(ctx context.Context) (*authsession.Identity, error) {
	var identity authsession.Identity
	if err := c.getJSON(ctx, "/auth/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// RegisterInput is the registration payload. Validation mirrors the
// backend's field rules so obviously bad input fails before the network.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates an account. It does not establish a session; callers
// authenticate separately. Field-level failures, local or remote, come
// back as a [*authsession.ValidationError].
func (c *Client) Register(ctx context.Context, input RegisterInput) (*authsession.Identity, error) {
	if err := c.validate.StructCtx(ctx, input); err != nil {
		return nil, asValidationError(err)
	}

	var identity authsession.Identity
	if err := c.postJSON(ctx, "/auth/register", input, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// drain consumes and closes the body so the underlying connection can be
// reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

// asValidationError converts validator failures into the shared
// field-level shape so local and remote validation surface identically.
func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &authsession.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, authsession.FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
		})
	}
	return out
}
