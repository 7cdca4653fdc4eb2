package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/example/channelmarket/internal/models"
)

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "Priya", "+919000000050", models.RoleSeller)

	resp, body := env.doJSON(t, fiber.MethodGet, "/api/profile", nil, token)
	requireStatus(t, resp, fiber.StatusOK, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, user.ID.String(), data["id"])
	assert.Equal(t, "Priya", data["name"])
	assert.NotContains(t, data, "password_hash")
}

func TestGetProfileRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.doJSON(t, fiber.MethodGet, "/api/profile", nil, "")
	requireStatus(t, resp, fiber.StatusUnauthorized, body)

	resp, body = env.doJSON(t, fiber.MethodGet, "/api/profile", nil, "garbage-token")
	requireStatus(t, resp, fiber.StatusUnauthorized, body)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "Old Name", "+919000000051", models.RoleUser)

	resp, body := env.doJSON(t, fiber.MethodPut, "/api/profile",
		fiber.Map{"name": "New Name", "email": "New@Example.com", "role": models.RoleSeller}, token)
	requireStatus(t, resp, fiber.StatusOK, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, "New Name", data["name"])
	assert.Equal(t, "new@example.com", data["email"])
	assert.Equal(t, models.RoleSeller, data["role"])
}

func TestUpdateProfileUniquenessChecks(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.createUser(t, "Taken", "+919000000052", models.RoleUser)
	_, token := env.createUser(t, "Updating", "+919000000053", models.RoleUser)

	resp, body := env.doJSON(t, fiber.MethodPut, "/api/profile",
		fiber.Map{"mobile": "+919000000052"}, token)
	requireStatus(t, resp, fiber.StatusBadRequest, body)
	assert.Contains(t, body["message"], "already in use")

	resp, body = env.doJSON(t, fiber.MethodPut, "/api/profile", fiber.Map{}, token)
	requireStatus(t, resp, fiber.StatusBadRequest, body)
}

func TestChangePasswordThenLogin(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "Pass", "+919000000054", models.RoleUser)

	// OTP-only account: no current password required on first set.
	resp, body := env.doJSON(t, fiber.MethodPost, "/api/profile/password",
		fiber.Map{"new_password": "firstpassword"}, token)
	requireStatus(t, resp, fiber.StatusOK, body)

	resp, body = env.doJSON(t, fiber.MethodPost, "/api/auth/login",
		fiber.Map{"mobile": "+919000000054", "password": "firstpassword"}, "")
	requireStatus(t, resp, fiber.StatusOK, body)

	// Rotation now requires the current password.
	resp, body = env.doJSON(t, fiber.MethodPost, "/api/profile/password",
		fiber.Map{"new_password": "secondpassword"}, token)
	requireStatus(t, resp, fiber.StatusBadRequest, body)

	resp, body = env.doJSON(t, fiber.MethodPost, "/api/profile/password",
		fiber.Map{"current_password": "firstpassword", "new_password": "secondpassword"}, token)
	requireStatus(t, resp, fiber.StatusOK, body)

	resp, body = env.doJSON(t, fiber.MethodPost, "/api/auth/login",
		fiber.Map{"mobile": "+919000000054", "password": "secondpassword"}, "")
	requireStatus(t, resp, fiber.StatusOK, body)
}

func TestChangePasswordRejectsShort(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "Short", "+919000000055", models.RoleUser)

	resp, body := env.doJSON(t, fiber.MethodPost, "/api/profile/password",
		fiber.Map{"new_password": "short"}, token)
	requireStatus(t, resp, fiber.StatusBadRequest, body)
}
