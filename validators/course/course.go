package courseValidator

import (
	"ielts/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CreateCourseAdmin validates the admin course-creation body.
func CreateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Capacity    uint   `json:"capacity"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}

		// A batch must be able to seat at least one student
		if reqData.Capacity < 1 {
			errors["capacity"] = "Capacity must be at least 1!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourseAdmin validates the admin course-update body.
func UpdateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseCourseID(c); err != nil {
			return err
		}

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Capacity    uint   `json:"capacity"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// CourseID validates the :id path parameter only.
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseCourseID(c); err != nil {
			return err
		}
		return c.Next()
	}
}

// CourseList validates list pagination.
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  int `query:"page"`
			Limit int `query:"limit"`
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

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

func parseCourseID(c *fiber.Ctx) error {
	courseIDStr := strings.TrimSpace(c.Params("id"))
	if courseIDStr == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
	}

	courseID, err := strconv.Atoi(courseIDStr)
	if err != nil || courseID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
	}

	c.Locals("courseID", courseID)
	return nil
}
