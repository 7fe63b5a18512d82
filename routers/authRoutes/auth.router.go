package authRoutes

import (
	authControllers "ielts/controllers/auth"
	"ielts/middleware"
	authValidators "ielts/validators/auth"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/login", authValidators.Login(), authControllers.Login)

	// Per-IP throttle on password setup: 5 attempts per 15 minutes
	setPasswordLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many attempts. Please try again later.", nil)
		},
	})

	userGroup := app.Group("/users")
	userGroup.Post("/set-password", setPasswordLimiter, authValidators.SetPassword(), authControllers.SetPassword)
}
