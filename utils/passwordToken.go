package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"ielts/models"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PasswordTokenTTL is how long a setup link stays usable.
const PasswordTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInternal = errors.New("internal token error")
)

// IssuePasswordToken creates a 256-bit setup token for the email,
// replacing any outstanding one. Runs on the caller's transaction so
// the token only becomes visible when the approval commits.
func IssuePasswordToken(tx *gorm.DB, email string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	record := models.PasswordSetupToken{
		Token:     token,
		Email:     email,
		ExpiresAt: time.Now().Add(PasswordTokenTTL),
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return "", err
	}

	return token, nil
}

// ValidatePasswordToken resolves a token to its email. Expired rows are
// deleted on sight. Backend errors are logged and mapped to a generic
// failure so driver messages never reach a client.
func ValidatePasswordToken(db *gorm.DB, token string) (string, error) {
	var record models.PasswordSetupToken
	err := db.Where("token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		log.Printf("Error looking up password token: %v", err)
		return "", ErrTokenInternal
	}

	// Constant-time comparison against the stored value
	if subtle.ConstantTimeCompare([]byte(record.Token), []byte(token)) != 1 {
		return "", ErrInvalidToken
	}

	if time.Now().After(record.ExpiresAt) {
		if err := db.Delete(&record).Error; err != nil {
			log.Printf("Error deleting expired password token: %v", err)
		}
		return "", ErrTokenExpired
	}

	return record.Email, nil
}

// ConsumePasswordToken validates and then deletes the token, making it
// single use. The delete itself is the arbiter: when two consumers race
// past validation, only the one whose delete removes the row wins, the
// other gets ErrInvalidToken. An invalid token leaves storage untouched.
func ConsumePasswordToken(db *gorm.DB, token string) (string, error) {
	email, err := ValidatePasswordToken(db, token)
	if err != nil {
		return "", err
	}

	res := db.Where("token = ?", token).Delete(&models.PasswordSetupToken{})
	if res.Error != nil {
		log.Printf("Error consuming password token: %v", res.Error)
		return "", ErrTokenInternal
	}
	if res.RowsAffected == 0 {
		return "", ErrInvalidToken
	}

	return email, nil
}
