package enrollmentValidator

import (
	"ielts/middleware"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// SubmitApplication validates the public application body.
func SubmitApplication() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			FullName      string `json:"full_name"`
			Email         string `json:"email"`
			TransactionID string `json:"transaction_id"`
			CourseID      uint   `json:"course_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.FullName = strings.TrimSpace(reqData.FullName)
		if reqData.FullName == "" {
			errors["full_name"] = "Full name is required!"
		}

		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		if err := validate.Var(reqData.Email, "required,email"); err != nil {
			errors["email"] = "A valid email address is required!"
		}

		reqData.TransactionID = strings.TrimSpace(reqData.TransactionID)
		if reqData.TransactionID == "" {
			errors["transaction_id"] = "Payment transaction ID is required!"
		}

		if reqData.CourseID == 0 {
			errors["course_id"] = "Course ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedApplication", reqData)
		return c.Next()
	}
}

// CourseCapacity validates the :courseId path parameter.
func CourseCapacity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("courseId"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		// Validate CourseID is a valid integer
		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// EnrollmentAction validates the :id path parameter for approve/reject.
func EnrollmentAction() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment ID is required!", nil)
		}

		enrollmentID, err := strconv.Atoi(idStr)
		if err != nil || enrollmentID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		c.Locals("enrollmentID", enrollmentID)
		return c.Next()
	}
}

// EnrollmentList validates the admin review-queue query parameters.
func EnrollmentList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Status string `query:"status"`
			Page   int    `query:"page"`
			Limit  int    `query:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if reqData.Page < 1 {
			reqData.Page = 1
		}
		if reqData.Limit < 1 || reqData.Limit > 100 {
			reqData.Limit = 20
		}

		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))
		switch reqData.Status {
		case "", "PENDING", "APPROVED", "REJECTED":
		default:
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid status filter!", nil)
		}

		c.Locals("validatedEnrollmentList", reqData)
		return c.Next()
	}
}
