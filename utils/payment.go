package utils

import (
	"fmt"
	"ielts/config"
	"time"

	"github.com/go-resty/resty/v2"
)

// VerifyTransaction asks the payment gateway whether a transaction
// reference exists. Returns (false, nil) only on a definitive negative
// answer. Gateway outages come back as an error that callers log and
// ignore: payment provider downtime must not block admissions.
func VerifyTransaction(transactionID string) (bool, error) {
	if config.AppConfig == nil || config.AppConfig.PaymentApiURL == "" {
		return true, nil
	}

	client := resty.New().SetTimeout(10 * time.Second)

	resp, err := client.R().
		SetHeader("Authorization", "Bearer "+config.AppConfig.PaymentApiKey).
		Get(config.AppConfig.PaymentApiURL + "/transactions/" + transactionID)
	if err != nil {
		return true, err
	}

	switch resp.StatusCode() {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return true, fmt.Errorf("payment gateway responded with status %d", resp.StatusCode())
}
