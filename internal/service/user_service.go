package service

import (
	"fmt"
	"strings"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
)

const defaultUserPageSize = 20

// UserQuery carries the raw user listing parameters.
type UserQuery struct {
	Page   string
	Limit  string
	Role   string
	Search string
}

type UserListResponse struct {
	Users      []models.User     `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

// UserService is the admin side of account management.
type UserService struct {
	userRepo repository.UserRepository
	maxLimit int
}

func NewUserService(userRepo repository.UserRepository, maxLimit int) *UserService {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &UserService{userRepo: userRepo, maxLimit: maxLimit}
}

func (s *UserService) List(actor Actor, q UserQuery) (*UserListResponse, error) {
	if err := actor.require(authorization.PermissionManageUsers); err != nil {
		return nil, err
	}

	filter := repository.UserFilter{
		Search: strings.TrimSpace(q.Search),
		Page:   parsePage(q.Page),
		Limit:  clampLimit(q.Limit, defaultUserPageSize, s.maxLimit),
	}
	if raw := strings.TrimSpace(q.Role); raw != "" && !strings.EqualFold(raw, "all") {
		role, ok := authorization.ParseUserRole(raw)
		if !ok {
			return nil, newValidationError("Invalid role")
		}
		filter.Role = &role
	}

	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{
		Users:      users,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *UserService) Create(actor Actor, req models.CreateUserRequest) (*models.User, error) {
	if err := actor.require(authorization.PermissionManageUsers); err != nil {
		return nil, err
	}

	role := authorization.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := authorization.ParseUserRole(req.Role)
		if !ok {
			return nil, newValidationError("Invalid role")
		}
		role = parsed
	}
	if !authorization.CanAssignRole(actor.Role, role) {
		return nil, newForbiddenError("Only a super admin can assign the %s role", role)
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, newValidationError("Name must be at least 2 characters")
	}
	return newUserAccount(s.userRepo, name, req.Email, req.Password, role)
}

// Update changes name, image or role of another account. Staff never edit
// their own account here, and only a super admin touches another super admin.
func (s *UserService) Update(actor Actor, id uint, req models.UpdateUserRequest) (*models.User, error) {
	if err := actor.require(authorization.PermissionManageUsers); err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, newForbiddenError("You cannot modify your own account")
	}

	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "load user")
	}
	if !authorization.CanModifyUser(actor.Role, user.Role) {
		return nil, newForbiddenError("Only a super admin can modify a super admin")
	}

	if req.Role != nil {
		role, ok := authorization.ParseUserRole(*req.Role)
		if !ok {
			return nil, newValidationError("Invalid role")
		}
		if role != user.Role {
			if !authorization.CanAssignRole(actor.Role, role) {
				return nil, newForbiddenError("Only a super admin can assign the %s role", role)
			}
			user.Role = role
		}
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			return nil, newValidationError("Name must be at least 2 characters")
		}
		user.Name = name
	}
	if req.Image != nil {
		user.Image = strings.TrimSpace(*req.Image)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes an account and its comments. Accounts that still author
// posts are kept so no post loses its author.
func (s *UserService) Delete(actor Actor, id uint) error {
	if err := actor.require(authorization.PermissionManageUsers); err != nil {
		return err
	}
	if id == actor.ID {
		return newForbiddenError("You cannot delete your own account")
	}

	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return notFoundOr(err, "User not found", "load user")
	}
	if !authorization.CanModifyUser(actor.Role, user.Role) {
		return newForbiddenError("Only a super admin can delete a super admin")
	}

	posts, err := s.userRepo.CountPosts(id)
	if err != nil {
		return fmt.Errorf("failed to count user posts: %w", err)
	}
	if posts > 0 {
		return newConflictError("Cannot delete user with posts")
	}

	if err := s.userRepo.Delete(id); err != nil {
		return notFoundOr(err, "User not found", "delete user")
	}
	return nil
}
