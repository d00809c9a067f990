package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
)

const minPasswordLength = 6

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a USER account and signs a session token for it.
func (s *AuthService) Register(req models.RegisterRequest) (string, *models.User, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return "", nil, newValidationError("Name must be at least 2 characters")
	}

	user, err := newUserAccount(s.userRepo, name, req.Email, req.Password, authorization.RoleUser)
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Login(req models.LoginRequest) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, newUnauthorizedError("Invalid credentials")
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, newUnauthorizedError("Invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role.String(),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns the caller it identifies.
func (s *AuthService) ParseToken(tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Actor{}, newUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, newUnauthorizedError("Invalid token claims")
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID < 1 {
		return Actor{}, newUnauthorizedError("Invalid token claims")
	}
	role, ok := authorization.ParseUserRole(claims["role"])
	if !ok {
		return Actor{}, newUnauthorizedError("Invalid token claims")
	}

	return Actor{ID: uint(rawID), Role: role}, nil
}

func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "load user")
	}
	return user, nil
}

// newUserAccount validates, hashes and stores a new account. Shared by
// registration, admin user creation and the CLI.
func newUserAccount(repo repository.UserRepository, name, email, password string, role authorization.UserRole) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, newValidationError("Email is required")
	}
	if len(password) < minPasswordLength {
		return nil, newValidationError("Password must be at least %d characters", minPasswordLength)
	}
	if !role.IsValid() {
		return nil, newValidationError("Invalid role")
	}

	_, err := repo.GetByEmail(email)
	if err == nil {
		return nil, newConflictError("User with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := repo.Create(user); err != nil {
		if isDuplicateKeyError(err) {
			return nil, newConflictError("User with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
