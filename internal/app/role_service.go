package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"hrpipeline/internal/audit"
	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/role"
	"hrpipeline/internal/store"
)

// RoleService manages permission roles and user assignments. It implements
// role.Provider for the HTTP authorization middleware.
type RoleService struct {
	store  store.Store
	audit  audit.Sink
	logger *logrus.Logger
}

func NewRoleService(s store.Store, auditSink audit.Sink, logger *logrus.Logger) *RoleService {
	return &RoleService{store: s, audit: auditSink, logger: logger}
}

type RoleInput struct {
	Name        string
	Description string
	Permissions map[role.Permission]bool
}

func (s *RoleService) CreateRole(ctx context.Context, actorID common.UUID, input RoleInput) (*role.Role, error) {
	if input.Name == "" {
		return nil, common.NewValidationError("invalid role", map[string]string{"name": "role name is required"})
	}
	now := time.Now().UTC()
	created := role.Role{
		ID:          common.NewUUID(),
		Name:        input.Name,
		Description: input.Description,
		Permissions: input.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if created.Permissions == nil {
		created.Permissions = map[role.Permission]bool{}
	}
	doc, err := store.Encode(created)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode role", err)
	}
	if err := s.store.Put(ctx, role.Collection, created.ID.String(), doc); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create role", err)
	}

	s.recordAudit(ctx, actorID, audit.ActionCreateRole, map[string]any{"roleId": created.ID.String(), "name": created.Name})
	return &created, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, actorID, id common.UUID, input RoleInput) (*role.Role, error) {
	existing, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		existing.Name = input.Name
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Permissions != nil {
		existing.Permissions = input.Permissions
	}
	existing.UpdatedAt = time.Now().UTC()

	doc, err := store.Encode(existing)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode role", err)
	}
	if err := s.store.Put(ctx, role.Collection, id.String(), doc); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update role", err)
	}

	s.recordAudit(ctx, actorID, audit.ActionUpdateRole, map[string]any{"roleId": id.String(), "name": existing.Name})
	return existing, nil
}

func (s *RoleService) DeleteRole(ctx context.Context, actorID, id common.UUID) error {
	if _, err := s.GetRole(ctx, id); err != nil {
		return err
	}

	assigned, err := s.store.Query(ctx, role.UsersCollection, func(doc store.Document) bool {
		return doc["roleId"] == id.String()
	})
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to check role assignments", err)
	}
	if len(assigned) > 0 {
		return common.NewError(common.CodeConflict, "role is still assigned to users", nil)
	}

	if err := s.store.Delete(ctx, role.Collection, id.String()); err != nil {
		return common.NewError(common.CodeInternal, "failed to delete role", err)
	}

	s.recordAudit(ctx, actorID, audit.ActionDeleteRole, map[string]any{"roleId": id.String()})
	return nil
}

func (s *RoleService) GetRole(ctx context.Context, id common.UUID) (*role.Role, error) {
	doc, err := s.store.Get(ctx, role.Collection, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NewError(common.CodeNotFound, "role not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load role", err)
	}
	var loaded role.Role
	if err := store.Decode(doc, &loaded); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode role", err)
	}
	return &loaded, nil
}

func (s *RoleService) ListRoles(ctx context.Context) ([]role.Role, error) {
	docs, err := s.store.Query(ctx, role.Collection, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list roles", err)
	}
	roles := make([]role.Role, 0, len(docs))
	for _, doc := range docs {
		var loaded role.Role
		if err := store.Decode(doc, &loaded); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode role", err)
		}
		roles = append(roles, loaded)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

// AssignRole links a user to a role, creating the user record when missing.
func (s *RoleService) AssignRole(ctx context.Context, actorID, userID, roleID common.UUID, name, email string) error {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return err
	}

	user := role.User{ID: userID, Name: name, Email: email, RoleID: roleID}
	if doc, err := s.store.Get(ctx, role.UsersCollection, userID.String()); err == nil {
		var existing role.User
		if err := store.Decode(doc, &existing); err == nil {
			if name == "" {
				user.Name = existing.Name
			}
			if email == "" {
				user.Email = existing.Email
			}
		}
	}
	doc, err := store.Encode(user)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to encode user", err)
	}
	if err := s.store.Put(ctx, role.UsersCollection, userID.String(), doc); err != nil {
		return common.NewError(common.CodeInternal, "failed to assign role", err)
	}

	s.recordAudit(ctx, actorID, audit.ActionAssignRole, map[string]any{"userId": userID.String(), "roleId": roleID.String()})
	return nil
}

func (s *RoleService) ListUsers(ctx context.Context) ([]role.User, error) {
	docs, err := s.store.Query(ctx, role.UsersCollection, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	users := make([]role.User, 0, len(docs))
	for _, doc := range docs {
		var user role.User
		if err := store.Decode(doc, &user); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode user", err)
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// PermissionsFor resolves a user's permission flags. Unknown users and users
// without a role hold no permissions.
func (s *RoleService) PermissionsFor(ctx context.Context, userID common.UUID) (map[role.Permission]bool, error) {
	doc, err := s.store.Get(ctx, role.UsersCollection, userID.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return map[role.Permission]bool{}, nil
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	var user role.User
	if err := store.Decode(doc, &user); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode user", err)
	}
	if user.RoleID.IsZero() {
		return map[role.Permission]bool{}, nil
	}
	assigned, err := s.GetRole(ctx, user.RoleID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return map[role.Permission]bool{}, nil
		}
		return nil, err
	}
	return assigned.Permissions, nil
}

func (s *RoleService) recordAudit(ctx context.Context, actorID common.UUID, action audit.Action, details map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actorID, action, details); err != nil {
		s.logger.WithError(err).WithField("action", string(action)).Warn("audit record failed")
	}
}
