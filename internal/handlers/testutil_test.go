package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/channelmarket/internal/config"
	"github.com/example/channelmarket/internal/database"
	"github.com/example/channelmarket/internal/models"
	"github.com/example/channelmarket/internal/routes"
	"github.com/example/channelmarket/internal/services"
	"github.com/example/channelmarket/internal/utils"
)

type stubSMS struct {
	lastMobile  string
	lastMessage string
	fail        bool
}

func (s *stubSMS) Send(_ context.Context, mobile, message string) error {
	if s.fail {
		return errors.New("provider down")
	}
	s.lastMobile = mobile
	s.lastMessage = message
	return nil
}

// lastCode extracts the OTP from the most recent dispatched message.
func (s *stubSMS) lastCode() string {
	return strings.TrimPrefix(s.lastMessage, "Your verification code is ")
}

type stubVerifier struct {
	claims *services.IdentityClaims
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (*services.IdentityClaims, error) {
	return v.claims, v.err
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	sms      *stubSMS
	verifier *stubVerifier
	redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		TokenExpires:      time.Hour,
		OTPExpires:        5 * time.Minute,
		OTPSendsPerMinute: 100,
		UploadsDir:        t.TempDir(),
	}

	sms := &stubSMS{}
	verifier := &stubVerifier{}

	app := fiber.New(fiber.Config{
		ErrorHandler: routes.ErrorHandler,
		BodyLimit:    30 << 20,
	})
	routes.Register(app, routes.Deps{
		DB:       db,
		Cache:    cache,
		Cfg:      cfg,
		SMS:      sms,
		Verifier: verifier,
	})

	return &testEnv{app: app, db: db, cfg: cfg, sms: sms, verifier: verifier, redis: mr}
}

func (env *testEnv) createUser(t *testing.T, name, mobile, role string) (*models.User, string) {
	t.Helper()

	user := &models.User{Name: name, Mobile: &mobile, Role: role}
	require.NoError(t, env.db.Create(user).Error)

	token, err := utils.GenerateToken(env.cfg.JWTSecret, user.ID, mobile, role, env.cfg.TokenExpires)
	require.NoError(t, err)

	return user, token
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	decoded := map[string]any{}
	if len(payload) > 0 {
		require.NoError(t, json.Unmarshal(payload, &decoded), "body: %s", payload)
	}

	return resp, decoded
}

func requireStatus(t *testing.T, resp *http.Response, want int, body map[string]any) {
	t.Helper()
	require.Equal(t, want, resp.StatusCode, fmt.Sprintf("body: %v", body))
}
