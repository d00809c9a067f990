package service

import (
	"strconv"
	"strings"

	"blogmodapk-backend/internal/authorization"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Role authorization.UserRole
}

func (a Actor) Can(permission authorization.Permission) bool {
	return a.ID != 0 && authorization.RoleHasPermission(a.Role, permission)
}

func (a Actor) require(permission authorization.Permission) error {
	if a.ID == 0 {
		return newUnauthorizedError("Unauthorized")
	}
	if !a.Can(permission) {
		return newForbiddenError("Forbidden")
	}
	return nil
}

// ParseID parses a numeric path or query identifier.
func ParseID(raw, name string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, newValidationError("Invalid %s", name)
	}
	return uint(value), nil
}

func parseOptionalID(raw, name string) (*uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := ParseID(raw, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parsePage returns a 1-based page number; anything unparsable means the first page.
func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// clampLimit applies the default for missing or invalid values and caps the rest at max.
func clampLimit(raw string, def, max int) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 1 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}

func parseOptionalBool(raw, name string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, newValidationError("Invalid %s", name)
	}
	return &value, nil
}
