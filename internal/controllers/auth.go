package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"supportdesk/internal/accounts"
	"supportdesk/internal/middleware"
	"supportdesk/internal/models"
	"supportdesk/internal/monitoring"
	"supportdesk/internal/utils"
	"supportdesk/internal/verification"
)

// bcrypt ignores everything past 72 bytes and x/crypto refuses such input.
const maxPasswordBytes = 72

var registerValidatorsOnce sync.Once

// registerValidators adds the "password" binding tag to gin's validator.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
				return utils.ValidPassword(fl.Field().String())
			})
			if err != nil {
				panic("register password validator: " + err.Error())
			}
		}
	})
}

type AuthController struct {
	codes *verification.Service
	auth  *accounts.Authenticator
	log   *slog.Logger
}

func NewAuthController(codes *verification.Service, auth *accounts.Authenticator, log *slog.Logger) *AuthController {
	registerValidators()
	return &AuthController{codes: codes, auth: auth, log: log}
}

type registerPayload struct {
	Username *string `json:"username" form:"username"`
	Password string  `json:"password" form:"password" binding:"password"`
	Name     string  `json:"name" form:"name"`
	Surname  string  `json:"surname" form:"surname"`
	Email    *string `json:"email" form:"email"`
}

func (a *AuthController) Register(c *gin.Context) {
	var p registerPayload
	if err := c.ShouldBind(&p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.String(http.StatusBadRequest, utils.PasswordPolicyMessage)
			return
		}
		c.String(http.StatusBadRequest, "Invalid request body.")
		return
	}
	if len(p.Password) > maxPasswordBytes {
		c.String(http.StatusBadRequest, "Password must be at most 72 bytes long.")
		return
	}

	hash, err := utils.HashPassword(p.Password)
	if err != nil {
		a.serverError(c, "could not hash password", err, "Error during registration. Please try again.")
		return
	}

	user := &models.User{
		Username: p.Username,
		Password: hash,
		Name:     p.Name,
		Surname:  p.Surname,
		Email:    p.Email,
	}
	if err := a.codes.Register(c.Request.Context(), user); err != nil {
		monitoring.RecordRegistration(monitoring.ResultFailed)
		a.serverError(c, "registration failed", err, "Error during registration. Please try again.")
		return
	}

	monitoring.RecordRegistration(monitoring.ResultOK)
	c.String(http.StatusOK, "Registration successful! Please check your email for verification code.")
}

type verifyPayload struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

func (a *AuthController) Verify(c *gin.Context) {
	var p verifyPayload
	if err := c.ShouldBind(&p); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body.")
		return
	}

	err := a.codes.Verify(c.Request.Context(), p.Email, p.Code)
	switch {
	case err == nil:
		c.String(http.StatusOK, "Verification successful! You can now login.")
	case errors.Is(err, verification.ErrInvalidCode):
		c.String(http.StatusBadRequest, "Invalid verification code. Please try again.")
	case errors.Is(err, verification.ErrTooManyAttempts):
		c.String(http.StatusTooManyRequests, "Too many verification attempts. Please try again later.")
	default:
		a.serverError(c, "verification failed", err, "Error verifying code. Please try again.")
	}
}

type loginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login checks credentials only; no session or token is issued.
func (a *AuthController) Login(c *gin.Context) {
	var p loginPayload
	if err := c.ShouldBind(&p); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body.")
		return
	}

	_, err := a.auth.Authenticate(c.Request.Context(), p.Email, p.Password)
	switch {
	case err == nil:
		c.String(http.StatusOK, "Login successful!")
	case errors.Is(err, accounts.ErrInvalidCredentials):
		c.String(http.StatusBadRequest, "Invalid email or password.")
	default:
		a.serverError(c, "login failed", err, "Error during login. Please try again.")
	}
}

func (a *AuthController) serverError(c *gin.Context, msg string, err error, body string) {
	a.log.ErrorContext(c.Request.Context(), msg, "error", err, "request_id", middleware.RequestIDFromContext(c))
	c.String(http.StatusInternalServerError, body)
}
