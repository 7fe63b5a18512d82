package authController

import (
	"ielts/config"
	"ielts/database"
	"ielts/middleware"
	"ielts/models"
	"ielts/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates a user by email and password.
func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	// Validate password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := time.Now()
	user.LastLogin = &now
	if err := database.Database.Db.Save(&user).Error; err != nil {
		log.Printf("Error updating last login for %s: %v", user.Email, err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// SetPassword consumes a password-setup token and stores the chosen
// password. The token is single use: a second call with the same value
// fails without touching anything.
func SetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSetPassword").(*struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Hash before consuming so a bcrypt failure cannot burn the token
	hashed, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to set password!", nil)
	}

	email, err := utils.ConsumePasswordToken(db, reqData.Token)
	if err != nil {
		switch err {
		case utils.ErrTokenExpired:
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Token has expired!", nil)
		case utils.ErrInvalidToken:
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid or expired token!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to set password!", nil)
		}
	}

	result := db.Model(&models.User{}).
		Where("email = ? AND is_deleted = ?", email, false).
		Update("password", string(hashed))
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to set password!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid or expired token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password set successfully!", nil)
}
