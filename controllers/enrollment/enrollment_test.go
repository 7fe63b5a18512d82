package controllers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gofiber/fiber/v2"

	"ielts/config"
	"ielts/database"
	"ielts/models"
	enrollmentRoutes "ielts/routers/enrollmentRoutes"
)

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:          "3000",
		JWTKey:        "test-secret",
		SaltRound:     4,
		EmailSender:   "noreply@example.com",
		FrontendURL:   "http://localhost:3001",
		EmailAttempts: 1,
		EmailMaxRetry: 5,
	}

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (*http.Response, apiResponse) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed apiResponse
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func applicationBody(email string, courseID uint) string {
	return fmt.Sprintf(`{"full_name":"Test Student","email":%q,"transaction_id":"TXN-001","course_id":%d}`, email, courseID)
}

func TestSubmitApplicationCreatesPendingEnrollment(t *testing.T) {
	app, db := setupApp(t)

	course := models.Course{Title: "IELTS Intensive", Capacity: 2}
	require.NoError(t, db.Create(&course).Error)

	resp, body := postJSON(t, app, "/enrollments/", applicationBody("a@x.com", course.ID))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.True(t, body.Status)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("email = ?", "a@x.com").First(&enrollment).Error)
	assert.Equal(t, models.EnrollmentPending, enrollment.Status)
	assert.Equal(t, course.ID, enrollment.CourseID)
	assert.Equal(t, "TXN-001", enrollment.TransactionID)
}

func TestSubmitApplicationUnknownCourse(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := postJSON(t, app, "/enrollments/", applicationBody("a@x.com", 999))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Course not found!", body.Message)
}

func TestSubmitApplicationRejectsDuplicate(t *testing.T) {
	app, db := setupApp(t)

	course := models.Course{Title: "IELTS Intensive", Capacity: 5}
	require.NoError(t, db.Create(&course).Error)

	resp, _ := postJSON(t, app, "/enrollments/", applicationBody("a@x.com", course.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := postJSON(t, app, "/enrollments/", applicationBody("a@x.com", course.ID))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "You have already applied for this course", body.Message)
}

func TestSubmitApplicationAllowsReapplyAfterRejection(t *testing.T) {
	app, db := setupApp(t)

	course := models.Course{Title: "IELTS Intensive", Capacity: 5}
	require.NoError(t, db.Create(&course).Error)

	rejected := models.Enrollment{
		CourseID:      course.ID,
		FullName:      "Test Student",
		Email:         "a@x.com",
		TransactionID: "TXN-000",
		Status:        models.EnrollmentRejected,
	}
	require.NoError(t, db.Create(&rejected).Error)

	resp, _ := postJSON(t, app, "/enrollments/", applicationBody("a@x.com", course.ID))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestSubmitApplicationValidation(t *testing.T) {
	app, db := setupApp(t)

	course := models.Course{Title: "IELTS Intensive", Capacity: 5}
	require.NoError(t, db.Create(&course).Error)

	body := fmt.Sprintf(`{"full_name":"","email":"not-an-email","transaction_id":"","course_id":%d}`, course.ID)
	resp, parsed := postJSON(t, app, "/enrollments/", body)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var errs map[string]string
	require.NoError(t, json.Unmarshal(parsed.Data, &errs))
	assert.Contains(t, errs, "full_name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "transaction_id")
}

func TestSubmitApplicationBatchFull(t *testing.T) {
	app, db := setupApp(t)

	course := models.Course{Title: "IELTS Intensive", Capacity: 1}
	require.NoError(t, db.Create(&course).Error)

	resp, _ := postJSON(t, app, "/enrollments/", applicationBody("a@x.com", course.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := postJSON(t, app, "/enrollments/", applicationBody("b@x.com", course.ID))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Batch is full", body.Message)
}

// Thirty simultaneous applications against 25 seats: exactly 25 get in.
func TestConcurrentSubmissionsRespectCapacity(t *testing.T) {
	app, db := setupApp(t)

	course := models.Course{Title: "IELTS Intensive", Capacity: 25}
	require.NoError(t, db.Create(&course).Error)

	const attempts = 30
	statuses := make([]int, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("student%02d@x.com", i)
			req, _ := http.NewRequest(http.MethodPost, "/enrollments/", strings.NewReader(applicationBody(email, course.ID)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				return
			}
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, code := range statuses {
		switch code {
		case fiber.StatusCreated:
			created++
		case fiber.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 25, created)
	assert.Equal(t, 5, conflicts)

	var taken int64
	db.Model(&models.Enrollment{}).
		Where("course_id = ? AND status IN ?", course.ID, []string{models.EnrollmentPending, models.EnrollmentApproved}).
		Count(&taken)
	assert.EqualValues(t, 25, taken)
}

func TestGetCourseCapacity(t *testing.T) {
	app, db := setupApp(t)

	course := models.Course{Title: "IELTS Intensive", Capacity: 3}
	require.NoError(t, db.Create(&course).Error)

	require.NoError(t, db.Create(&models.Enrollment{
		CourseID: course.ID, FullName: "A", Email: "a@x.com",
		TransactionID: "TXN-1", Status: models.EnrollmentApproved,
	}).Error)
	require.NoError(t, db.Create(&models.Enrollment{
		CourseID: course.ID, FullName: "B", Email: "b@x.com",
		TransactionID: "TXN-2", Status: models.EnrollmentPending,
	}).Error)
	require.NoError(t, db.Create(&models.Enrollment{
		CourseID: course.ID, FullName: "C", Email: "c@x.com",
		TransactionID: "TXN-3", Status: models.EnrollmentRejected,
	}).Error)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("/enrollments/capacity/%d", course.ID), nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed apiResponse
	require.NoError(t, json.Unmarshal(raw, &parsed))

	var data map[string]int64
	require.NoError(t, json.Unmarshal(parsed.Data, &data))
	assert.EqualValues(t, 3, data["capacity"])
	assert.EqualValues(t, 2, data["current"]) // rejected rows hold no seat
	assert.EqualValues(t, 1, data["available"])
}

func TestGetCourseCapacityUnknownCourse(t *testing.T) {
	app, _ := setupApp(t)

	req, err := http.NewRequest(http.MethodGet, "/enrollments/capacity/42", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
