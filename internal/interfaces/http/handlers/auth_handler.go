package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/interfaces/http/middleware"
	"mechamind.backend/internal/interfaces/http/response"
	"mechamind.backend/internal/usecases"
)

// SessionCookieMaxAge is seven days in seconds.
const SessionCookieMaxAge = 7 * 24 * 60 * 60

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase  *usecases.AuthUsecase
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. secureCookie marks the session cookie Secure.
func NewAuthHandler(authUsecase *usecases.AuthUsecase, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookie, token, maxAge, "/", "", h.secureCookie, true)
}

// Signup sends a verification code for a new account
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var input entities.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.authUsecase.RequestSignup(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			response.Error(c, domainerrors.Conflict("email already registered").WithCode(domainerrors.CodeEmailExists))
			return
		}
		response.Error(c, err)
		return
	}

	response.Notice(c, http.StatusOK, "CODE_SENT", gin.H{"success": true, "data": result})
}

// Verify consumes the code, creates the account and starts a session
// POST /api/v1/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var input entities.VerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	auth, err := h.authUsecase.Verify(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, auth.Token, SessionCookieMaxAge)
	response.Success(c, http.StatusCreated, gin.H{"success": true, "data": auth})
}

// ResendOTP issues a fresh code for a pending signup
// POST /api/v1/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var input entities.EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.authUsecase.Resend(c.Request.Context(), input.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Notice(c, http.StatusOK, "CODE_SENT", gin.H{"success": true, "data": result})
}

// CancelOTP drops a pending signup
// POST /api/v1/auth/cancel-otp
func (h *AuthHandler) CancelOTP(c *gin.Context) {
	var input entities.EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.authUsecase.Cancel(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Notice(c, http.StatusOK, "SIGNUP_CANCELLED", gin.H{"success": true})
}

// Signin handles user login
// POST /api/v1/auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var input entities.SigninInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	auth, err := h.authUsecase.Signin(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, auth.Token, SessionCookieMaxAge)
	response.Success(c, http.StatusOK, gin.H{"success": true, "data": auth})
}

// Signout clears the cookie and revokes the presented token
// POST /api/v1/auth/signout
func (h *AuthHandler) Signout(c *gin.Context) {
	err := h.authUsecase.Signout(c.Request.Context(), middleware.BearerOrCookie(c), c.GetHeader(middleware.SessionIDHeader))
	h.setSessionCookie(c, "", -1)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Notice(c, http.StatusOK, "SIGNED_OUT", gin.H{"success": true})
}

// Me returns the signed-in user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.authUsecase.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeUserNotFound))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UpdateProfile renames the user and optionally changes the password
// POST /api/v1/auth/update-profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.authUsecase.UpdateProfile(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeUserNotFound))
		return
	}
	response.Notice(c, http.StatusOK, "PROFILE_UPDATED", gin.H{"success": true, "user": user})
}
