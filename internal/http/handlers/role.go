package handlers

import (
	"net/http"

	"hrpipeline/internal/app"
	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/role"
	"hrpipeline/internal/http/middleware"
	"hrpipeline/internal/http/response"
)

type RoleHandler struct {
	roles *app.RoleService
}

func NewRoleHandler(roles *app.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

type roleRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Permissions map[string]bool `json:"permissions"`
}

func (r roleRequest) toInput() app.RoleInput {
	perms := make(map[role.Permission]bool, len(r.Permissions))
	for name, enabled := range r.Permissions {
		perms[role.Permission(name)] = enabled
	}
	return app.RoleInput{Name: r.Name, Description: r.Description, Permissions: perms}
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.roles.CreateRole(r.Context(), actorID, req.toInput())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	roleID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.roles.UpdateRole(r.Context(), actorID, roleID, req.toInput())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	roleID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.roles.DeleteRole(r.Context(), actorID, roleID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.ListRoles(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, roles)
}

type assignRoleRequest struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (h *RoleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req assignRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	userID, err := common.ParseUUID(req.UserID)
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid user id", err))
		return
	}
	roleID, err := common.ParseUUID(req.RoleID)
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid role id", err))
		return
	}
	if err := h.roles.AssignRole(r.Context(), actorID, userID, roleID, req.Name, req.Email); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *RoleHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.roles.ListUsers(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}
