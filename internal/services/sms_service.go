package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// SMSSender dispatches a text message to a mobile number.
type SMSSender interface {
	Send(ctx context.Context, mobile, message string) error
}

// SMSService sends messages through the bulk SMS provider's REST API.
type SMSService struct {
	baseURL  string
	apiKey   string
	senderID string
	client   *http.Client
}

// NewSMSService creates a new SMSService.
func NewSMSService(baseURL, apiKey, senderID string) *SMSService {
	return &SMSService{
		baseURL:  baseURL,
		apiKey:   apiKey,
		senderID: senderID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type smsRequest struct {
	Route    string `json:"route"`
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
	Numbers  string `json:"numbers"`
}

// Send dispatches message to mobile. When no API key is configured the
// message is logged instead, which keeps local development working
// without a provider account.
func (s *SMSService) Send(ctx context.Context, mobile, message string) error {
	if s.apiKey == "" {
		log.Printf("[SMS] Provider not configured, message for %s: %s", mobile, message)
		return nil
	}

	payload := smsRequest{
		Route:    "q",
		SenderID: s.senderID,
		Message:  message,
		Numbers:  mobile,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[SMS] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[SMS] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	return nil
}
