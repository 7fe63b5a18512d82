package controllers

import (
	"ielts/database"
	"ielts/middleware"
	"ielts/models"
	"ielts/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SubmitApplication records a new enrollment application. The duplicate
// and capacity checks run inside the same transaction as the insert,
// after touching the course row, so concurrent submissions for one
// course serialize on its row lock and the ceiling cannot be overshot.
func SubmitApplication(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedApplication").(*struct {
		FullName      string `json:"full_name"`
		Email         string `json:"email"`
		TransactionID string `json:"transaction_id"`
		CourseID      uint   `json:"course_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if course exists
	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", reqData.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Optional payment reference lookup. Gateway downtime is logged and
	// ignored; only a definitive "unknown transaction" blocks admission.
	if verified, err := utils.VerifyTransaction(reqData.TransactionID); err != nil {
		log.Printf("Payment gateway unavailable while verifying %s: %v", reqData.TransactionID, err)
	} else if !verified {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment transaction could not be verified!", nil)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit application!", nil)
	}

	// Take the course row write lock so capacity reads serialize
	if err := tx.Model(&models.Course{}).Where("id = ?", course.ID).Update("updated_at", time.Now()).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit application!", nil)
	}

	// Duplicate check runs before the capacity check
	var existing models.Enrollment
	err := tx.Where("email = ? AND course_id = ? AND status <> ?",
		reqData.Email, course.ID, models.EnrollmentRejected).First(&existing).Error
	if err == nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You have already applied for this course", nil)
	}

	var taken int64
	err = tx.Model(&models.Enrollment{}).
		Where("course_id = ? AND status IN ?", course.ID, []string{models.EnrollmentPending, models.EnrollmentApproved}).
		Count(&taken).Error
	if err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit application!", nil)
	}

	if taken >= int64(course.Capacity) {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Batch is full", nil)
	}

	enrollment := models.Enrollment{
		CourseID:      course.ID,
		FullName:      reqData.FullName,
		Email:         reqData.Email,
		TransactionID: reqData.TransactionID,
		Status:        models.EnrollmentPending,
	}

	if err := tx.Create(&enrollment).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit application!", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit application!", nil)
	}

	// No email at this stage; the applicant hears back after review
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Application submitted successfully!", enrollment)
}

// GetCourseCapacity reports seat usage for a course.
func GetCourseCapacity(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var taken int64
	err := db.Model(&models.Enrollment{}).
		Where("course_id = ? AND status IN ?", course.ID, []string{models.EnrollmentPending, models.EnrollmentApproved}).
		Count(&taken).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch capacity!", nil)
	}

	available := int64(course.Capacity) - taken
	if available < 0 {
		available = 0
	}

	data := fiber.Map{
		"capacity":  course.Capacity,
		"current":   taken,
		"available": available,
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Capacity fetched successfully!", data)
}

// ListCourses returns open courses with their availability, for the
// public enrollment form.
func ListCourses(c *fiber.Ctx) error {
	db := database.Database.Db

	var courses []models.Course
	if err := db.Where("is_deleted = ?", false).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	list := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		var taken int64
		if err := db.Model(&models.Enrollment{}).
			Where("course_id = ? AND status IN ?", course.ID, []string{models.EnrollmentPending, models.EnrollmentApproved}).
			Count(&taken).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
		}

		available := int64(course.Capacity) - taken
		if available < 0 {
			available = 0
		}

		list = append(list, fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
			"capacity":    course.Capacity,
			"available":   available,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", list)
}
