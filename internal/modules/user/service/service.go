package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/user/dto"
	"anoa.com/newsportal/internal/modules/user/repository"
	"anoa.com/newsportal/internal/rbac"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	CreateAccount(ctx context.Context, req dto.AdminCreateRequest) (*dto.UserResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	Identity(ctx context.Context, userID uuid.UUID) (rbac.Identity, error)

	AddToGroup(ctx context.Context, userID uuid.UUID, group string) (*dto.UserResponse, error)
	RemoveFromGroup(ctx context.Context, userID uuid.UUID, group string) (*dto.UserResponse, error)
	ClearGroups(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	AssignRole(ctx context.Context, userID uuid.UUID, role string) (*dto.UserResponse, error)
}

type userService struct {
	repo       repository.UserRepository
	reconciler *rbac.Reconciler
	log        zerolog.Logger
	hashCost   int
}

func NewUserService(repo repository.UserRepository, reconciler *rbac.Reconciler, log zerolog.Logger) UserService {
	return &userService{
		repo:       repo,
		reconciler: reconciler,
		log:        log,
		hashCost:   bcrypt.DefaultCost,
	}
}

// Register creates a reader. Membership is granted through the reconciler
// so the role field is derived like every other path.
func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	user, err := s.create(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.reconciler.AddToGroup(ctx, user.ID, rbac.RoleReader.GroupName()); err != nil {
		s.rollbackCreate(ctx, user.ID)
		return nil, err
	}

	return s.Me(ctx, user.ID)
}

func (s *userService) CreateAccount(ctx context.Context, req dto.AdminCreateRequest) (*dto.UserResponse, error) {
	role, ok := rbac.ParseRole(req.Role)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a valid choice for role", apperror.ErrValidation, req.Role)
	}

	user, err := s.create(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.reconciler.AssignRole(ctx, user.ID, role); err != nil {
		s.rollbackCreate(ctx, user.ID)
		return nil, err
	}

	return s.Me(ctx, user.ID)
}

func (s *userService) create(ctx context.Context, username, email, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: a user with that email already exists", apperror.ErrValidation)
	}

	exists, err = s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: a user with that username already exists", apperror.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         rbac.RoleReader.String(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) rollbackCreate(ctx context.Context, userID uuid.UUID) {
	if err := s.repo.Delete(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to remove user after membership failure")
	}
}

func (s *userService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.repo.GroupNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []string{}
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      rbac.Classify(groups).String(),
		Groups:    groups,
		CreatedAt: user.CreatedAt,
	}, nil
}

// Identity resolves the caller from group membership, never from the
// stored role field.
func (s *userService) Identity(ctx context.Context, userID uuid.UUID) (rbac.Identity, error) {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return rbac.Identity{}, fmt.Errorf("%w: user not found", apperror.ErrUnauthorized)
		}
		return rbac.Identity{}, err
	}
	groups, err := s.repo.GroupNames(ctx, userID)
	if err != nil {
		return rbac.Identity{}, err
	}
	return rbac.Identity{UserID: userID, Role: rbac.Classify(groups)}, nil
}

func (s *userService) AddToGroup(ctx context.Context, userID uuid.UUID, group string) (*dto.UserResponse, error) {
	if _, err := s.reconciler.AddToGroup(ctx, userID, group); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func (s *userService) RemoveFromGroup(ctx context.Context, userID uuid.UUID, group string) (*dto.UserResponse, error) {
	if _, err := s.reconciler.RemoveFromGroup(ctx, userID, group); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func (s *userService) ClearGroups(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	if _, err := s.reconciler.ClearGroups(ctx, userID); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func (s *userService) AssignRole(ctx context.Context, userID uuid.UUID, role string) (*dto.UserResponse, error) {
	r, ok := rbac.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a valid choice for role", apperror.ErrValidation, role)
	}
	if _, err := s.reconciler.AssignRole(ctx, userID, r); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}
