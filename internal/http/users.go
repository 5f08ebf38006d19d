package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
)

type UsersController struct {
	auth *auth.Service
}

func NewUsersController(authService *auth.Service) *UsersController {
	return &UsersController{auth: authService}
}

type registerRequest struct {
	Email           string `json:"email" form:"email"`
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" form:"refresh"`
}

type updateDetailsRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// Register creates an account.
// POST /api/users/register
func (uc *UsersController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.auth.Register(auth.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		if respondFieldErrorsOr(c, err, "Validation failed") {
			return
		}
		respondError(c, http.StatusInternalServerError, "An unexpected error occurred during registration. Please try again later.")
		return
	}

	respondSuccess(c, http.StatusCreated, "User registered successfully", userResponse{
		Email:    user.Email,
		Username: user.Username,
	})
}

// Login exchanges credentials for an access and refresh token.
// POST /api/users/login
func (uc *UsersController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := uc.auth.Login(auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		var rateErr *auth.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rateErr.RetryAfter.Seconds()))))
			respondError(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		case errors.Is(err, auth.ErrMissingCredentials):
			respondError(c, http.StatusBadRequest, "Email and password are required.")
		case errors.Is(err, auth.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, "Invalid email format.")
		case errors.Is(err, auth.ErrAccountNotFound):
			respondError(c, http.StatusUnauthorized, "No account found with this email address.")
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "Invalid credentials.")
		default:
			respondInternalError(c, err, "login")
		}
		return
	}

	respondSuccess(c, http.StatusOK, "Login successful", loginResponse{
		Refresh:  result.Refresh,
		Access:   result.Access,
		Email:    result.Email,
		Username: result.Username,
	})
}

// Logout revokes the caller's refresh token.
// POST /api/users/logout
func (uc *UsersController) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := uc.auth.Logout(auth.GetUserID(c), req.Refresh); err != nil {
		respondTokenError(c, err, http.StatusBadRequest, "logout")
		return
	}

	respondSuccess(c, http.StatusOK, "You are successfully logged out", nil)
}

// Refresh rotates a refresh token into a new token pair.
// POST /api/users/token/refresh
func (uc *UsersController) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := uc.auth.Refresh(req.Refresh)
	if err != nil {
		respondTokenError(c, err, http.StatusUnauthorized, "refresh")
		return
	}

	respondSuccess(c, http.StatusOK, "Token refreshed successfully.", pair)
}

// UpdateDetails replaces the caller's email and username.
// PUT /api/users/update-user-details
func (uc *UsersController) UpdateDetails(c *gin.Context) {
	var req updateDetailsRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.auth.UpdateDetails(auth.GetUserID(c), req.Email, req.Username)
	if err != nil {
		if respondFieldErrorsOr(c, err, "Update failed.") {
			return
		}
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found.")
			return
		}
		respondInternalError(c, err, "update user details")
		return
	}

	respondSuccess(c, http.StatusOK, "User details updated successfully.", userResponse{
		Email:    user.Email,
		Username: user.Username,
	})
}

// ChangePassword replaces the caller's password.
// PUT /api/users/change-password
func (uc *UsersController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := uc.auth.ChangePassword(auth.GetUserID(c), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		if respondFieldErrorsOr(c, err, "Password change failed.") {
			return
		}
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found.")
			return
		}
		respondInternalError(c, err, "change password")
		return
	}

	respondSuccess(c, http.StatusOK, "Password changed successfully.", nil)
}

// respondTokenError maps refresh token failures. invalidStatus is used for
// tokens that are malformed, expired, revoked or not the caller's.
func respondTokenError(c *gin.Context, err error, invalidStatus int, context string) {
	switch {
	case errors.Is(err, auth.ErrRefreshRequired):
		respondError(c, http.StatusBadRequest, "Refresh token is required.")
	case errors.Is(err, auth.ErrTokenRevoked):
		respondError(c, invalidStatus, "Token is blacklisted.")
	case errors.Is(err, auth.ErrInvalidToken):
		respondError(c, invalidStatus, "Invalid or expired token.")
	default:
		respondInternalError(c, err, context)
	}
}
