package utils

import (
	"encoding/json"
	"ielts/config"
	"ielts/database"
	"ielts/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sweep tuning: batch size per run and how far back a record is still
// worth redriving.
const (
	retryBatchSize  = 100
	retryWindowDays = 7
	retryCronSpec   = "@every 15m"
)

// SweepResult aggregates one RetryFailedEmails run.
type SweepResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// logSweep logs retry sweep events with timestamp
func logSweep(message string) {
	log.Printf("[EMAIL-RETRY %s] %s", time.Now().Format(time.RFC3339), message)
}

// RecordFailedEmail persists a delivery failure so the sweep can redrive
// it. Persistence problems are logged and swallowed: a broken audit
// trail must not turn a committed approval into an apparent failure.
func RecordFailedEmail(db *gorm.DB, emailType, recipient string, data map[string]string, enrollmentID, userID *uint) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error serializing failed email payload for %s: %v", recipient, err)
		return
	}

	attempt := models.FailedEmailAttempt{
		Type:         emailType,
		Recipient:    recipient,
		Data:         datatypes.JSON(payload),
		EnrollmentID: enrollmentID,
		UserID:       userID,
	}

	if err := db.Create(&attempt).Error; err != nil {
		log.Printf("Error recording failed %s email for %s: %v", emailType, recipient, err)
	}
}

// RetryFailedEmails redrives stored failures, oldest first. Successful
// sends delete the record; failures bump retry_count and last_retry and
// wait for a later sweep. Safe to call from cron, an admin endpoint, or
// both at once on the same small batch.
func RetryFailedEmails(db *gorm.DB, maxRetries int) SweepResult {
	result := SweepResult{}
	cutoff := time.Now().AddDate(0, 0, -retryWindowDays)

	var attempts []models.FailedEmailAttempt
	err := db.Where("retry_count < ? AND created_at >= ?", maxRetries, cutoff).
		Order("created_at asc").
		Limit(retryBatchSize).
		Find(&attempts).Error
	if err != nil {
		logSweep("Error fetching failed email attempts: " + err.Error())
		return result
	}

	for _, attempt := range attempts {
		result.Processed++

		var data map[string]string
		if err := json.Unmarshal(attempt.Data, &data); err != nil {
			logSweep("Error decoding payload for attempt: " + err.Error())
		}

		send := SendTemplateEmail(attempt.Recipient, attempt.Type, data)
		if send.Success {
			if err := db.Delete(&attempt).Error; err != nil {
				logSweep("Error deleting redelivered attempt: " + err.Error())
			}
			result.Succeeded++
			continue
		}

		// Increment in the database, not from the fetched copy, so an
		// overlapping sweep cannot lose a bump
		updates := map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_retry":  time.Now(),
		}
		if err := db.Model(&attempt).Updates(updates).Error; err != nil {
			logSweep("Error updating retry count: " + err.Error())
		}
		result.Failed++
	}

	if result.Processed > 0 {
		logSweep(jsonSummary(result))
	}
	return result
}

func jsonSummary(r SweepResult) string {
	b, _ := json.Marshal(r)
	return "Sweep finished: " + string(b)
}

// StartEmailRetryScheduler runs the sweep periodically in the background.
func StartEmailRetryScheduler() {
	c := cron.New()

	_, err := c.AddFunc(retryCronSpec, func() {
		RetryFailedEmails(database.Database.Db, config.AppConfig.EmailMaxRetry)
	})
	if err != nil {
		log.Fatalf("Failed to register email retry schedule: %v", err)
	}

	c.Start()
	logSweep("Email retry scheduler started (" + retryCronSpec + ")")
}
