package enrollmentRoutes

import (
	controllers "ielts/controllers/enrollment"
	validators "ielts/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// SetupEnrollmentRoutes sets up the public application endpoints
func SetupEnrollmentRoutes(app *fiber.App) {
	enrollGroup := app.Group("/enrollments")

	enrollGroup.Post("/", validators.SubmitApplication(), controllers.SubmitApplication)
	enrollGroup.Get("/capacity/:courseId", validators.CourseCapacity(), controllers.GetCourseCapacity)

	// Course catalog for the enrollment form
	app.Get("/courses", controllers.ListCourses)
}
