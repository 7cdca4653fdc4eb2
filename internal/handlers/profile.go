package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/channelmarket/internal/middleware"
	"github.com/example/channelmarket/internal/models"
	"github.com/example/channelmarket/internal/utils"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": user})
}

type updateProfileRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Role   string `json:"role"`
}

// UpdateProfile updates profile fields, re-checking mobile and email
// uniqueness when they change.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	updates := map[string]interface{}{}

	if req.Mobile != "" {
		if !utils.ValidMobile(req.Mobile) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid mobile number")
		}
		var existing models.User
		err := h.db.Where("mobile = ? AND id != ?", req.Mobile, userID).First(&existing).Error
		if err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "mobile number already in use")
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		updates["mobile"] = req.Mobile
	}

	if req.Email != "" {
		email := strings.ToLower(req.Email)
		if !utils.ValidEmail(email) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
		}
		var existing models.User
		err := h.db.Where("email = ? AND id != ?", email, userID).First(&existing).Error
		if err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "email already in use")
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		updates["email"] = email
	}

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Role != "" {
		if !models.ValidRole(req.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "unrecognized role")
		}
		updates["role"] = req.Role
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	updates["updated_at"] = time.Now()

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": user})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword sets or rotates the account password. Accounts created
// via OTP or Firebase have no password; for them the current password is
// not required.
func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.NewPassword) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if user.PasswordHash != "" {
		if req.CurrentPassword == "" {
			return fiber.NewError(fiber.StatusBadRequest, "current password is required")
		}
		if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			return fiber.NewError(fiber.StatusBadRequest, "current password is incorrect")
		}
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", hash).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password changed successfully"})
}
