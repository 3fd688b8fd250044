package authsession

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the canonical authorization level. The set is closed: every
// role in the system normalizes to one of the three constants below or to
// [RoleNone].
type Role string

const (
	// RoleConsumer can watch and rate content.
	RoleConsumer Role = "consumer"
	// RoleCreator can additionally upload and manage own content.
	RoleCreator Role = "creator"
	// RoleAdmin has full moderation and user-management access.
	RoleAdmin Role = "admin"
	// RoleNone means no role could be derived. It is never guessed into
	// a default.
	RoleNone Role = ""
)

// NormalizeRole maps a raw role string onto the closed role set. Matching
// is lowercase-trimmed and runs through a fixed synonym table; unknown
// values yield [RoleNone].
func NormalizeRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrator":
		return RoleAdmin
	case "creator", "author", "uploader":
		return RoleCreator
	case "consumer", "viewer", "user":
		return RoleConsumer
	default:
		return RoleNone
	}
}

// DeriveRole computes the role for the given identity/credential pair.
// The identity is preferred: once the server has confirmed who the
// credential belongs to, its record is the source of truth. Without an
// identity the credential itself is decoded as a self-contained claims
// token, so a role is available immediately at process start from a
// previously persisted credential, before any network round trip.
func DeriveRole(identity *Identity, credential string) Role {
	if identity != nil && identity.Role != "" {
		return NormalizeRole(identity.Role)
	}
	return RoleFromCredential(credential)
}

// RoleFromCredential decodes the bearer credential as a JWT without
// verifying its signature and normalizes the "role" claim. Any decode
// failure or missing claim yields [RoleNone]; it is never an error.
//
// The decoded value is a responsiveness hint only. Hydration replaces it
// with the server-confirmed role.
func RoleFromCredential(credential string) Role {
	if credential == "" {
		return RoleNone
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return RoleNone
	}

	raw, _ := claims["role"].(string)
	return NormalizeRole(raw)
}
