package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/channelmarket/internal/config"
	"github.com/example/channelmarket/internal/models"
	"github.com/example/channelmarket/internal/services"
	"github.com/example/channelmarket/internal/utils"
)

// FirebaseHandler exchanges verified Firebase ID tokens for local sessions.
type FirebaseHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	verifier services.TokenVerifier
}

// NewFirebaseHandler constructs a FirebaseHandler. verifier may be nil
// when federated login is not configured.
func NewFirebaseHandler(db *gorm.DB, cfg *config.Config, verifier services.TokenVerifier) *FirebaseHandler {
	return &FirebaseHandler{db: db, cfg: cfg, verifier: verifier}
}

type firebaseRequest struct {
	Source string `json:"source"`
}

// Exchange verifies the bearer ID token and maps the external subject to
// a local account. Resolution is three-step to avoid duplicate accounts:
// exact Firebase UID, then email (linking the UID), then a new skeleton.
func (h *FirebaseHandler) Exchange(c *fiber.Ctx) error {
	if h.verifier == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "federated login is not configured")
	}

	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return fiber.NewError(fiber.StatusUnauthorized, "missing identity token")
	}

	claims, err := h.verifier.Verify(c.UserContext(), parts[1])
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired identity token")
	}

	var req firebaseRequest
	_ = c.BodyParser(&req)

	user, err := h.resolveUser(claims)
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.MobileString(), user.Role, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    userSummary(user),
	})
}

func (h *FirebaseHandler) resolveUser(claims *services.IdentityClaims) (*models.User, error) {
	var user models.User
	err := h.db.Where("firebase_uid = ?", claims.UID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if claims.Email != "" {
		email := strings.ToLower(claims.Email)
		err = h.db.Where("email = ?", email).First(&user).Error
		if err == nil {
			// Link the existing email account to this Firebase subject.
			user.FirebaseUID = &claims.UID
			if err := h.db.Save(&user).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	user = models.User{
		Name:        claims.Name,
		Role:        models.RoleUser,
		FirebaseUID: &claims.UID,
		Provider:    "firebase",
	}
	if claims.Email != "" {
		email := strings.ToLower(claims.Email)
		user.Email = &email
	}

	if err := h.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
