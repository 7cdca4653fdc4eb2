package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/channelmarket/internal/config"
	"github.com/example/channelmarket/internal/models"
	"github.com/example/channelmarket/internal/otp"
	"github.com/example/channelmarket/internal/services"
	"github.com/example/channelmarket/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db   *gorm.DB
	cfg  *config.Config
	otps *otp.Store
	sms  services.SMSSender
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, otps *otp.Store, sms services.SMSSender) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, otps: otps, sms: sms}
}

type signupRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Role   string `json:"role"`
}

// Signup creates an OTP-only account. No password is collected; login
// happens via OTP or a federated identity.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.ValidMobile(req.Mobile) {
		return fiber.NewError(fiber.StatusBadRequest, "valid mobile number is required")
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return fiber.NewError(fiber.StatusBadRequest, "unrecognized role")
	}

	var existing models.User
	if err := h.db.Where("mobile = ?", req.Mobile).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "mobile number already registered")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	user := models.User{
		Name:   req.Name,
		Mobile: &req.Mobile,
		Role:   role,
	}

	if req.Email != "" {
		email := strings.ToLower(req.Email)
		if !utils.ValidEmail(email) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
		}
		if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "email already registered")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		user.Email = &email
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "user registered successfully",
		"user":    userSummary(&user),
	})
}

type sendOTPRequest struct {
	Mobile string `json:"mobile"`
}

// SendOTP issues a fresh one-time code for the mobile number, replacing
// any pending code, and dispatches it via SMS. Unknown mobiles are not
// rejected; the account is provisioned on verification.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.ValidMobile(req.Mobile) {
		return fiber.NewError(fiber.StatusBadRequest, "valid mobile number is required")
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate OTP")
	}

	if err := h.otps.Save(c.UserContext(), req.Mobile, code); err != nil {
		return err
	}

	message := fmt.Sprintf("Your verification code is %s", code)
	if err := h.sms.Send(c.UserContext(), req.Mobile, message); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to send OTP")
	}

	return c.JSON(fiber.Map{"success": true, "message": "OTP sent successfully"})
}

type verifyOTPRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

// VerifyOTP validates a one-time code and logs the user in, creating a
// skeleton account on first login.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Mobile == "" || req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "mobile and OTP are required")
	}

	if err := h.otps.Consume(c.UserContext(), req.Mobile, req.OTP); err != nil {
		if err == otp.ErrCodeInvalid {
			return fiber.NewError(fiber.StatusBadRequest, "invalid or expired OTP")
		}
		return err
	}

	var user models.User
	err := h.db.Where("mobile = ?", req.Mobile).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.User{Mobile: &req.Mobile, Role: models.RoleUser}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.MobileString(), user.Role, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    userSummary(&user),
	})
}

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// Login authenticates with mobile and password. Only accounts that have
// set a password can use this flow; everyone else logs in via OTP.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Mobile == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "mobile and password are required")
	}

	var user models.User
	if err := h.db.Where("mobile = ?", req.Mobile).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.MobileString(), user.Role, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    userSummary(&user),
	})
}

func userSummary(user *models.User) fiber.Map {
	return fiber.Map{
		"id":     user.ID,
		"name":   user.Name,
		"mobile": user.MobileString(),
		"role":   user.Role,
	}
}
