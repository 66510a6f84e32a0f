package auth

import (
	"errors"
	"strings"

	"github.com/bedside-care/bedside/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// UserStore is the slice of the staff-user repository the service needs
type UserStore interface {
	CreateStaffUser(email, passwordHash string) (*models.StaffUser, error)
	GetStaffUserByEmail(email string) (*models.StaffUser, error)
	GetStaffUserByID(id string) (*models.StaffUser, error)
}

// Service handles staff registration and login. Session state is explicit
// dependency-injected state, not a package-level singleton.
type Service struct {
	users  UserStore
	tokens *TokenManager
	logger *zap.Logger
}

// NewService creates the staff auth service
func NewService(users UserStore, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Register creates a new staff user with a hashed password
func (s *Service) Register(email, password string) (*models.StaffUser, error) {
	if !ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !ValidatePassword(password) {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateStaffUser(email, string(hashed))
	if err != nil {
		return nil, err
	}
	s.logger.Info("staff user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login validates credentials and returns a session token
func (s *Service) Login(email, password string) (string, *models.StaffUser, error) {
	user, err := s.users.GetStaffUserByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.ValidatePassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ValidatePassword checks if a password meets the complexity requirements.
func ValidatePassword(password string) bool {
	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
		hasSymbol bool
	)
	if len(password) < 8 {
		return false
	}
	for _, char := range password {
		switch {
		case 'A' <= char && char <= 'Z':
			hasUpper = true
		case 'a' <= char && char <= 'z':
			hasLower = true
		case '0' <= char && char <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSymbol
}

// ValidateEmail checks if an email has a valid format.
func ValidateEmail(email string) bool {
	// A very basic email validation check
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
