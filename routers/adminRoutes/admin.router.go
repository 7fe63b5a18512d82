package adminRoutes

import (
	controllers "ielts/controllers/admin"
	"ielts/middleware"
	courseValidators "ielts/validators/course"
	enrollmentValidators "ielts/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up enrollment review and course management routes
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.AdminOnly())

	// Enrollment review queue
	adminGroup.Get("/enrollments", enrollmentValidators.EnrollmentList(), controllers.ListEnrollments)
	adminGroup.Patch("/enrollments/:id/approve", enrollmentValidators.EnrollmentAction(), controllers.ApproveEnrollment)
	adminGroup.Patch("/enrollments/:id/reject", enrollmentValidators.EnrollmentAction(), controllers.RejectEnrollment)

	// Course management
	adminGroup.Post("/courses", courseValidators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Get("/courses", courseValidators.CourseList(), controllers.AdminGetAllCourses)
	adminGroup.Get("/courses/:id", courseValidators.CourseID(), controllers.AdminGetCourseDetails)
	adminGroup.Put("/courses/:id", courseValidators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/courses/:id", courseValidators.CourseID(), controllers.AdminDeleteCourse)

	// Manual trigger for the failed-email sweep
	adminGroup.Post("/emails/retry", controllers.RetryFailedEmailsNow)
}
