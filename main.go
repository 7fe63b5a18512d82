package main

import (
	"ielts/config"
	"ielts/database"
	"ielts/utils"
	"log"

	adminRoutes "ielts/routers/adminRoutes"
	authRoutes "ielts/routers/authRoutes"
	enrollmentRoutes "ielts/routers/enrollmentRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	// Background redelivery of failed notification emails
	utils.StartEmailRetryScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
