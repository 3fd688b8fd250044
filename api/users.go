package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	authsession "github.com/streamvault/authsession"
)

// SetRole is the self-service role switch. Only consumer and creator are
// permitted from the client; granting admin to oneself is rejected before
// the network. The restriction is a UX convenience: the server enforces
// the same rule authoritatively.
func (c *Client) SetRole(ctx context.Context, role authsession.Role) (*authsession.Identity, error) {
	switch authsession.NormalizeRole(string(role)) {
	case authsession.RoleConsumer, authsession.RoleCreator:
	default:
		return nil, fmt.Errorf("%w: %q", authsession.ErrRoleNotPermitted, role)
	}

	var identity authsession.Identity
	payload := map[string]string{"role": string(authsession.NormalizeRole(string(role)))}
	if err := c.postJSON(ctx, "/users/me/role", payload, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// UserChanges carries the fields an update may touch. Nil fields are
// omitted and left unchanged server-side.
type UserChanges struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
}

// AdminCreateInput is the admin-only account creation payload, which
// unlike [RegisterInput] may set the role directly.
type AdminCreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=consumer creator admin"`
}

// ListUsers pages through the user directory. Admin only server-side.
func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]authsession.Identity, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var users []authsession.Identity
	if err := c.getJSON(ctx, "/users/", query, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies changes to the given user. Role changes are admin
// only server-side.
func (c *Client) UpdateUser(ctx context.Context, userID int64, changes UserChanges) (*authsession.Identity, error) {
	var identity authsession.Identity
	path := fmt.Sprintf("/users/%d", userID)
	if err := c.sendJSON(ctx, http.MethodPut, path, changes, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// DeleteUser removes the given user. Admin only server-side.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/users/%d", c.base, userID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// CreateUserWithRole creates an account with an explicit role, bypassing
// the consumer default of open registration. Admin only server-side.
func (c *Client) CreateUserWithRole(ctx context.Context, input AdminCreateInput) (*authsession.Identity, error) {
	if err := c.validate.StructCtx(ctx, input); err != nil {
		return nil, asValidationError(err)
	}

	var identity authsession.Identity
	if err := c.postJSON(ctx, "/users/admin", input, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
