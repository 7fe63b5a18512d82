package controllers

import (
	"ielts/config"
	"ielts/database"
	"ielts/middleware"
	"ielts/models"
	"ielts/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ListEnrollments returns the admin review queue, newest first.
func ListEnrollments(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEnrollmentList").(*struct {
		Status string `query:"status"`
		Page   int    `query:"page"`
		Limit  int    `query:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&models.Enrollment{})
	if reqData.Status != "" {
		db = db.Where("status = ?", reqData.Status)
	}

	var total int64
	db.Count(&total)

	offset := (reqData.Page - 1) * reqData.Limit

	var enrollments []models.Enrollment
	if err := db.Preload("Course").Offset(offset).Limit(reqData.Limit).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	response := map[string]interface{}{
		"enrollments": enrollments,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}

// RejectEnrollment flips a pending enrollment to REJECTED. The guard
// lives in the WHERE clause, so a processed enrollment cannot be
// rejected twice no matter how requests interleave.
func RejectEnrollment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(int)

	result := database.Database.Db.Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", enrollmentID, models.EnrollmentPending).
		Update("status", models.EnrollmentRejected)
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject enrollment!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment not found or already processed", nil)
	}

	// No notification email on rejection
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment rejected successfully!", fiber.Map{
		"enrollment_id": enrollmentID,
	})
}

// ApproveEnrollment runs the approval workflow: re-check the pending
// status and course capacity inside one transaction, create the user
// account if the email is new, issue a password-setup token, commit,
// and only then send the notification email. A mail failure is recorded
// for the retry sweep and never undoes the approval.
func ApproveEnrollment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(int)

	db := database.Database.Db

	tx := db.Begin()
	if tx.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}

	// Optimistic guard: only a pending enrollment can be approved
	var enrollment models.Enrollment
	err := tx.Where("id = ? AND status = ?", enrollmentID, models.EnrollmentPending).First(&enrollment).Error
	if err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment not found or already processed", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}

	// Take the course row write lock so concurrent approvals of this
	// course serialize, then re-check the seat count authoritatively.
	if err := tx.Model(&models.Course{}).Where("id = ?", enrollment.CourseID).Update("updated_at", time.Now()).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}

	var course models.Course
	if err := tx.First(&course, enrollment.CourseID).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}

	var approved int64
	err = tx.Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", enrollment.CourseID, models.EnrollmentApproved).
		Count(&approved).Error
	if err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}

	if approved >= int64(course.Capacity) {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course capacity exceeded", nil)
	}

	// The flip is guarded by the pending check in the WHERE clause: a
	// rival approval that committed after our fetch above leaves zero
	// rows affected here, and we bail out instead of approving twice.
	flip := tx.Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, models.EnrollmentPending).
		Update("status", models.EnrollmentApproved)
	if flip.Error != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}
	if flip.RowsAffected == 0 {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment not found or already processed", nil)
	}

	var user models.User
	err = tx.Where("email = ? AND is_deleted = ?", enrollment.Email, false).First(&user).Error

	tokenGenerated := false
	var passwordToken string

	switch {
	case err == nil:
		// Existing account (re-enrollment): nothing more to provision

	case err == gorm.ErrRecordNotFound:
		// The temporary password is hashed and discarded; the student
		// sets a real one through the emailed token.
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(utils.GenerateTempPassword()), config.AppConfig.SaltRound)
		if hashErr != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user account!", nil)
		}

		user = models.User{
			Name:     enrollment.FullName,
			Email:    enrollment.Email,
			Role:     "STUDENT",
			Password: string(hashed),
		}
		if err := tx.Create(&user).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user account!", nil)
		}

		passwordToken, err = utils.IssuePasswordToken(tx, enrollment.Email)
		if err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user account!", nil)
		}
		tokenGenerated = true

	default:
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}

	// Sent after commit: a mail failure must not undo the approval
	emailSent := false
	if tokenGenerated {
		data := map[string]string{
			"name":   enrollment.FullName,
			"course": course.Title,
			"link":   config.AppConfig.FrontendURL + "/set-password?token=" + passwordToken,
		}

		send := utils.SendTemplateEmail(enrollment.Email, utils.TemplatePasswordSetup, data)
		if send.Success {
			emailSent = true
		} else {
			utils.RecordFailedEmail(db, utils.TemplatePasswordSetup, enrollment.Email, data, &enrollment.ID, &user.ID)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment approved successfully!", fiber.Map{
		"enrollment_id":            enrollment.ID,
		"password_token_generated": tokenGenerated,
		"email_sent":               emailSent,
	})
}

// RetryFailedEmailsNow triggers one sweep of the failed-email table.
// The cron schedule runs the same unit of work; both are idempotent.
func RetryFailedEmailsNow(c *fiber.Ctx) error {
	result := utils.RetryFailedEmails(database.Database.Db, config.AppConfig.EmailMaxRetry)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email retry sweep completed!", result)
}
