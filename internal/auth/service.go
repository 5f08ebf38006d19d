package auth

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/validation"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrAccountNotFound    = errors.New("no account found with this email address")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrRefreshRequired    = errors.New("refresh token is required")
	ErrRegistrationFailed = errors.New("registration failed")
)

const msgBlank = "This field may not be blank."

// RateLimitError is returned by Login while the client is locked out.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrTooManyAttempts, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrTooManyAttempts
}

// UserStore is the user persistence the service needs.
type UserStore interface {
	Create(user *entities.User) error
	GetByID(id uint) (*entities.User, error)
	GetByEmail(email string) (*entities.User, error)
	EmailTaken(email string, excludeID uint) (bool, error)
	UsernameTaken(username string, excludeID uint) (bool, error)
	UpdateDetails(id uint, email, username string) error
	UpdatePassword(id uint, passwordHash string) error
	TouchLastLogin(id uint, at time.Time) error
}

// RevocationStore blacklists refresh tokens by JWT ID.
type RevocationStore interface {
	Revoke(jti string, userID uint, expiresAt time.Time) error
	IsRevoked(jti string) (bool, error)
}

// Auditor receives account events. Optional.
type Auditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
	LogAccount(userID uint, action, description string)
}

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// LoginInput carries credentials plus the client identity used for rate
// limiting and auditing.
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	TokenPair
	Email    string
	Username string
}

// Service handles accounts and token lifecycle.
type Service struct {
	users   UserStore
	revoked RevocationStore
	tokens  *TokenIssuer
	limiter *RateLimiter
	auditor Auditor
	config  config.Auth
	now     func() time.Time
}

// NewService creates a new authentication service. limiter and auditor may
// be nil.
func NewService(users UserStore, revoked RevocationStore, tokens *TokenIssuer, limiter *RateLimiter, auditor Auditor, cfg config.Auth) *Service {
	return &Service{
		users:   users,
		revoked: revoked,
		tokens:  tokens,
		limiter: limiter,
		auditor: auditor,
		config:  cfg,
		now:     time.Now,
	}
}

// Register validates every field, then creates the account. Validation
// problems come back as validation.FieldErrors; anything unexpected is
// logged and reported as ErrRegistrationFailed.
func (s *Service) Register(in RegisterInput) (*entities.User, error) {
	errs := validation.FieldErrors{}

	email, err := s.checkEmail(errs, in.Email, 0)
	if err != nil {
		log.Printf("Registration failed: %v", err)
		return nil, ErrRegistrationFailed
	}
	username, err := s.checkUsername(errs, in.Username, 0)
	if err != nil {
		log.Printf("Registration failed: %v", err)
		return nil, ErrRegistrationFailed
	}

	if in.Password == "" {
		errs.Add("password", msgBlank)
	} else {
		_, err := validation.PasswordStrength(in.Password)
		errs.Check("password", err)
	}
	if in.ConfirmPassword == "" {
		errs.Add("confirm_password", msgBlank)
	}

	if len(errs) == 0 && in.Password != in.ConfirmPassword {
		errs.Add(validation.NonFieldErrors, validation.MsgPasswordsMismatch)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			errs.Add("password", "Ensure this field has no more than 72 bytes.")
			return nil, errs
		}
		log.Printf("Registration failed for %s: %v", email, err)
		return nil, ErrRegistrationFailed
	}

	user := &entities.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(user); err != nil {
		// Lost a race with a concurrent registration.
		if database.IsUniqueViolation(err) {
			return nil, s.uniqueViolation(email, username, 0)
		}
		log.Printf("Registration failed for %s: %v", email, err)
		return nil, ErrRegistrationFailed
	}

	s.logAccount(user.ID, "register", "Account created for "+user.Username)
	return user, nil
}

// Login checks credentials and issues a token pair.
func (s *Service) Login(in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}
	if _, err := validation.Email(email); err != nil {
		return nil, ErrInvalidEmail
	}

	if s.limiter != nil {
		if allowed, retryAfter := s.limiter.Allow(in.IP, email); !allowed {
			return nil, &RateLimitError{RetryAfter: retryAfter}
		}
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(in, 0)
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(in.Password, user.PasswordHash); err != nil {
		s.recordFailure(in, user.ID)
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to check password: %w", err)
	}

	if s.limiter != nil {
		s.limiter.RecordSuccess(in.IP, email)
	}

	if NeedsRehash(user.PasswordHash, s.config.BcryptCost) {
		if hash, err := HashPassword(in.Password, s.config.BcryptCost); err == nil {
			if err := s.users.UpdatePassword(user.ID, hash); err != nil {
				log.Printf("Failed to rehash password for user %d: %v", user.ID, err)
			}
		}
	}
	if err := s.users.TouchLastLogin(user.ID, s.now()); err != nil {
		log.Printf("Failed to record last login for user %d: %v", user.ID, err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.LogAuth(user.ID, "login", in.IP, in.UserAgent, true)
	}

	return &LoginResult{TokenPair: pair, Email: user.Email, Username: user.Username}, nil
}

func (s *Service) recordFailure(in LoginInput, userID uint) {
	if s.limiter != nil {
		if locked, _ := s.limiter.RecordFailure(in.IP, strings.ToLower(strings.TrimSpace(in.Email))); locked {
			log.Printf("Login locked out for %s from %s", in.Email, in.IP)
		}
	}
	if s.auditor != nil {
		s.auditor.LogAuth(userID, "login", in.IP, in.UserAgent, false)
	}
}

// Logout blacklists the caller's refresh token.
func (s *Service) Logout(userID uint, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrRefreshRequired
	}

	claims, err := s.tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return err
	}
	owner, err := claims.UserID()
	if err != nil || owner != userID {
		return ErrInvalidToken
	}

	if err := s.revoked.Revoke(claims.ID, owner, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logAccount(userID, "logout", "Refresh token revoked")
	return nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// refresh token is revoked so it cannot be replayed.
func (s *Service) Refresh(refreshToken string) (TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return TokenPair{}, ErrRefreshRequired
	}

	claims, err := s.tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	revoked, err := s.revoked.IsRevoked(claims.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return TokenPair{}, ErrTokenRevoked
	}

	userID, _ := claims.UserID()
	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}

	if err := s.revoked.Revoke(claims.ID, userID, claims.ExpiresAt.Time); err != nil {
		return TokenPair{}, fmt.Errorf("failed to rotate token: %w", err)
	}
	return s.tokens.IssuePair(userID)
}

// Authenticate resolves an access token to its user.
func (s *Service) Authenticate(accessToken string) (*entities.User, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.tokens.Parse(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	userID, _ := claims.UserID()
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateDetails replaces the user's email and username. The user's own
// current values do not count as taken.
func (s *Service) UpdateDetails(userID uint, rawEmail, rawUsername string) (*entities.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	errs := validation.FieldErrors{}
	email, err := s.checkEmail(errs, rawEmail, userID)
	if err != nil {
		return nil, err
	}
	username, err := s.checkUsername(errs, rawUsername, userID)
	if err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.users.UpdateDetails(userID, email, username); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, s.uniqueViolation(email, username, userID)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user.Email, user.Username = email, username
	s.logAccount(userID, "update_details", "Email and username updated")
	return user, nil
}

// ChangePassword verifies the current password and stores a new one.
func (s *Service) ChangePassword(userID uint, current, newPassword, confirm string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	errs := validation.FieldErrors{}
	switch {
	case current == "":
		errs.Add("current_password", msgBlank)
	case CheckPassword(current, user.PasswordHash) != nil:
		errs.Add("current_password", "The current password you entered is incorrect. Please try again.")
	}
	if newPassword == "" {
		errs.Add("new_password", msgBlank)
	} else {
		_, err := validation.PasswordStrength(newPassword)
		errs.Check("new_password", err)
	}
	if confirm == "" {
		errs.Add("confirm_password", msgBlank)
	}
	if len(errs) == 0 && newPassword != confirm {
		errs.Add(validation.NonFieldErrors, "New password and confirm password do not match.")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return validation.FieldErrors{"new_password": {"Ensure this field has no more than 72 bytes."}}
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logAccount(userID, "change_password", "Password changed")
	return nil
}

// checkEmail validates raw into errs and, if well-formed, checks it is not
// used by anyone but excludeID. The returned error is a store failure.
func (s *Service) checkEmail(errs validation.FieldErrors, raw string, excludeID uint) (string, error) {
	if strings.TrimSpace(raw) == "" {
		errs.Add("email", msgBlank)
		return "", nil
	}
	email, err := validation.Email(raw)
	if !errs.Check("email", err) {
		return "", nil
	}
	taken, err := s.users.EmailTaken(email, excludeID)
	if err != nil {
		return "", fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if taken {
		errs.Add("email", validation.MsgEmailTaken)
	}
	return email, nil
}

func (s *Service) checkUsername(errs validation.FieldErrors, raw string, excludeID uint) (string, error) {
	if strings.TrimSpace(raw) == "" {
		errs.Add("username", msgBlank)
		return "", nil
	}
	username, err := validation.Username(raw)
	if !errs.Check("username", err) {
		return "", nil
	}
	taken, err := s.users.UsernameTaken(username, excludeID)
	if err != nil {
		return "", fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if taken {
		errs.Add("username", validation.MsgUsernameTaken)
	}
	return username, nil
}

// uniqueViolation works out which column collided after the store rejected
// a write.
func (s *Service) uniqueViolation(email, username string, excludeID uint) error {
	errs := validation.FieldErrors{}
	if taken, _ := s.users.EmailTaken(email, excludeID); taken {
		errs.Add("email", validation.MsgEmailTaken)
	}
	if taken, _ := s.users.UsernameTaken(username, excludeID); taken {
		errs.Add("username", validation.MsgUsernameTaken)
	}
	if len(errs) == 0 {
		errs.Add(validation.NonFieldErrors, validation.MsgUsernameTaken)
	}
	return errs
}

func (s *Service) logAccount(userID uint, action, description string) {
	if s.auditor != nil {
		s.auditor.LogAccount(userID, action, description)
	}
}
