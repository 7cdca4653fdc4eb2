package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/channelmarket/internal/config"
	"github.com/example/channelmarket/internal/handlers"
	"github.com/example/channelmarket/internal/middleware"
	"github.com/example/channelmarket/internal/otp"
	"github.com/example/channelmarket/internal/services"
)

// Deps carries everything route handlers need.
type Deps struct {
	DB       *gorm.DB
	Cache    *redis.Client
	Cfg      *config.Config
	SMS      services.SMSSender
	Verifier services.TokenVerifier
}

// ErrorHandler converts every handler error into the JSON envelope the
// clients expect. Unexpected errors become a generic 500 so internal
// details never cross the HTTP boundary.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	otpStore := otp.NewStore(deps.Cache, deps.Cfg.OTPExpires)

	authHandler := handlers.NewAuthHandler(deps.DB, deps.Cfg, otpStore, deps.SMS)
	firebaseHandler := handlers.NewFirebaseHandler(deps.DB, deps.Cfg, deps.Verifier)
	profileHandler := handlers.NewProfileHandler(deps.DB)
	channelHandler := handlers.NewChannelHandler(deps.DB, deps.Cfg)
	paymentHandler := handlers.NewPaymentHandler(deps.DB)
	adminHandler := handlers.NewAdminHandler(deps.DB)

	// Uploaded media is served statically with cache headers.
	app.Static("/uploads", deps.Cfg.UploadsDir, fiber.Static{
		MaxAge:        int(time.Hour.Seconds()),
		CacheDuration: time.Hour,
	})

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/send-otp", middleware.OTPRateLimit(deps.Cache, deps.Cfg.OTPSendsPerMinute), authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/login", authHandler.Login)
	auth.Post("/firebase", firebaseHandler.Exchange)

	// Public channel browsing
	api.Get("/channels", channelHandler.ListChannels)
	api.Get("/channels/:id", channelHandler.GetChannel)

	// Payment provider callback is unauthenticated by necessity.
	api.Post("/payments/callback", paymentHandler.Callback)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(deps.Cfg))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Post("/profile/password", profileHandler.ChangePassword)

	protected.Post("/channels", channelHandler.CreateChannel)
	protected.Put("/channels/:id", channelHandler.UpdateChannel)
	protected.Delete("/channels/:id", channelHandler.DeleteChannel)

	protected.Post("/payments/initiate", paymentHandler.InitiatePayment)
	protected.Get("/payments/:merchantTransactionId/status", paymentHandler.PaymentStatus)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(deps.Cfg), middleware.RequireAdmin())
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Get("/transactions", adminHandler.ListTransactions)
	admin.Get("/channels", adminHandler.ListChannels)
	admin.Get("/channel/:id", adminHandler.GetChannel)
	admin.Patch("/channels/:id/approve", adminHandler.ApproveChannel)
	admin.Patch("/channels/:id/demanding", adminHandler.ToggleDemanding)
	admin.Delete("/channels/:id", adminHandler.DeleteChannel)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Patch("/users/:id/role", adminHandler.UpdateUserRole)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
}
