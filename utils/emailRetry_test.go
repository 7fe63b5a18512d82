package utils

import (
	"encoding/json"
	"errors"
	"ielts/config"
	"ielts/models"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// stubTransport records sends and fails for chosen recipients.
type stubTransport struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (s *stubTransport) Send(to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[to] {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, to)
	return nil
}

func setupSweep(t *testing.T, failFor map[string]bool) (*gorm.DB, *stubTransport) {
	t.Helper()

	config.AppConfig = &config.Config{
		EmailSender:   "noreply@example.com",
		FrontendURL:   "http://localhost:3001",
		EmailAttempts: 1,
		EmailMaxRetry: 5,
	}

	stub := &stubTransport{failFor: failFor}
	Transport = stub
	t.Cleanup(func() { Transport = nil })

	return setupTokenDB(t), stub
}

func seedAttempt(t *testing.T, db *gorm.DB, recipient string) models.FailedEmailAttempt {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"name":   "Student",
		"course": "IELTS Intensive",
		"link":   "http://localhost:3001/set-password?token=abc",
	})
	require.NoError(t, err)

	attempt := models.FailedEmailAttempt{
		Type:      TemplatePasswordSetup,
		Recipient: recipient,
		Data:      datatypes.JSON(payload),
	}
	require.NoError(t, db.Create(&attempt).Error)
	return attempt
}

func TestRetrySweepBookkeeping(t *testing.T) {
	db, stub := setupSweep(t, map[string]bool{
		"b@example.com": true,
		"c@example.com": true,
	})

	seedAttempt(t, db, "a@example.com")
	seedAttempt(t, db, "b@example.com")
	seedAttempt(t, db, "c@example.com")

	result := RetryFailedEmails(db, 3)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)

	assert.Equal(t, []string{"a@example.com"}, stub.sent)

	// The delivered record is gone, the failed ones carry a bumped count
	var remaining []models.FailedEmailAttempt
	require.NoError(t, db.Order("recipient asc").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	for _, attempt := range remaining {
		assert.Equal(t, 1, attempt.RetryCount)
		assert.NotNil(t, attempt.LastRetry)
	}
}

func TestRetrySweepSkipsExhaustedAttempts(t *testing.T) {
	db, stub := setupSweep(t, nil)

	attempt := seedAttempt(t, db, "worn-out@example.com")
	require.NoError(t, db.Model(&attempt).Update("retry_count", 3).Error)

	result := RetryFailedEmails(db, 3)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, stub.sent)
}

func TestRetrySweepSkipsStaleAttempts(t *testing.T) {
	db, stub := setupSweep(t, nil)

	attempt := seedAttempt(t, db, "old@example.com")
	stale := time.Now().AddDate(0, 0, -8)
	require.NoError(t, db.Model(&attempt).Update("created_at", stale).Error)

	result := RetryFailedEmails(db, 3)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, stub.sent)

	// Stale records are skipped, not purged
	var count int64
	db.Model(&models.FailedEmailAttempt{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRetrySweepIsRepeatable(t *testing.T) {
	db, _ := setupSweep(t, map[string]bool{"x@example.com": true})

	seedAttempt(t, db, "x@example.com")

	first := RetryFailedEmails(db, 3)
	assert.Equal(t, 1, first.Failed)
	second := RetryFailedEmails(db, 3)
	assert.Equal(t, 1, second.Failed)
	third := RetryFailedEmails(db, 3)
	assert.Equal(t, 1, third.Failed)

	// Each sweep added exactly one to the stored count
	var attempt models.FailedEmailAttempt
	require.NoError(t, db.First(&attempt).Error)
	assert.Equal(t, 3, attempt.RetryCount)

	// Fourth sweep finds the attempt exhausted
	fourth := RetryFailedEmails(db, 3)
	assert.Equal(t, 0, fourth.Processed)
}

func TestSendTemplateEmailUnknownTemplate(t *testing.T) {
	_, _ = setupSweep(t, nil)

	result := SendTemplateEmail("a@example.com", "no-such-template", nil)
	assert.False(t, result.Success)
	assert.False(t, result.Retryable)
	assert.Error(t, result.Error)
}

func TestRecordFailedEmailStoresPayload(t *testing.T) {
	db, _ := setupSweep(t, nil)

	enrollmentID := uint(7)
	RecordFailedEmail(db, TemplatePasswordSetup, "a@example.com", map[string]string{"name": "A"}, &enrollmentID, nil)

	var attempt models.FailedEmailAttempt
	require.NoError(t, db.First(&attempt).Error)
	assert.Equal(t, TemplatePasswordSetup, attempt.Type)
	assert.Equal(t, "a@example.com", attempt.Recipient)
	require.NotNil(t, attempt.EnrollmentID)
	assert.EqualValues(t, 7, *attempt.EnrollmentID)
	assert.Nil(t, attempt.UserID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(attempt.Data, &data))
	assert.Equal(t, "A", data["name"])
}
