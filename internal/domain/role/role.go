// Package role defines permission flags and the provider contract the HTTP
// layer consults before invoking a pipeline transition. The engine itself
// performs no authorization checks.
package role

import (
	"context"
	"time"

	"hrpipeline/internal/common"
)

const (
	Collection      = "roles"
	UsersCollection = "users"
)

type Permission string

const (
	PermManageRecruitment   Permission = "manage_recruitment"
	PermManageContracts     Permission = "manage_contracts"
	PermViewCollaborators   Permission = "view_collaborators"
	PermManageCollaborators Permission = "manage_collaborators"
	PermViewTalentPool      Permission = "view_talent_pool"
	PermViewTerminated      Permission = "view_terminated"
	PermManagePermissions   Permission = "manage_permissions"
	PermViewAuditLogs       Permission = "view_audit_logs"
)

type Role struct {
	ID          common.UUID         `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Permissions map[Permission]bool `json:"permissions"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// User is the store-side assignment record linking a user to a role.
type User struct {
	ID     common.UUID `json:"id"`
	Name   string      `json:"name,omitempty"`
	Email  string      `json:"email,omitempty"`
	RoleID common.UUID `json:"roleId,omitempty"`
}

// Provider resolves the permission flags held by a user. A user without an
// assigned role holds no permissions.
type Provider interface {
	PermissionsFor(ctx context.Context, userID common.UUID) (map[Permission]bool, error)
}
