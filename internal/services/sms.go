package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// SMSService sends order notifications to customers through the Africa's
// Talking messaging API. Notifications are best effort: callers log failures
// and move on, an undelivered SMS never fails the intake.
type SMSService struct {
	username string
	apiKey   string
	senderId string
	baseUrl  string
}

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Status     string `json:"status"`
			Cost       string `json:"cost"`
			MessageId  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

func NewSMSService(username, apiKey, senderID string) *SMSService {
	return &SMSService{
		username: username,
		apiKey:   apiKey,
		senderId: senderID,
		baseUrl:  "https://api.sandbox.africastalking.com/version1/messaging",
	}
}

func (s *SMSService) SendSMS(to, message string) error {
	data := url.Values{}
	data.Set("username", s.username)
	data.Set("to", s.formatPhoneNumber(to))
	data.Set("message", message)
	if s.senderId != "" {
		data.Set("from", s.senderId)
	}

	req, err := http.NewRequest("POST", s.baseUrl, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", s.apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	slog.Debug("SMS API response", "body", string(bodyBytes))

	var smsResponse SMSResponse
	if err := json.Unmarshal(bodyBytes, &smsResponse); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(smsResponse.SMSMessageData.Recipients) == 0 {
		return fmt.Errorf("no recipients in response")
	}

	recipient := smsResponse.SMSMessageData.Recipients[0]
	if recipient.StatusCode != 101 && recipient.StatusCode != 102 {
		return fmt.Errorf("SMS failed to send: %s (code: %d)", recipient.Status, recipient.StatusCode)
	}

	return nil
}

// formatPhoneNumber normalizes the free-text phone the front desk typed into
// E.164. Bare nine-digit mobiles get the Peru country code.
func (s *SMSService) formatPhoneNumber(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")

	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if strings.HasPrefix(phone, "51") && len(phone) == 11 {
		return "+" + phone
	}
	return "+51" + phone
}

// IntakeMessage is the SMS sent when the order is registered.
func IntakeMessage(orderNumber string) string {
	return fmt.Sprintf("Compucell: su orden %s fue registrada. Guarde este número para consultas.", orderNumber)
}

// ReadyMessage is the SMS sent when the equipment is ready for pickup.
func ReadyMessage(orderNumber string) string {
	return fmt.Sprintf("Compucell: su equipo de la orden %s está listo para recoger.", orderNumber)
}

type MockSMSService struct {
	SentMessages []MockSMSMessage
}

type MockSMSMessage struct {
	To      string
	Message string
}

func NewMockSMSService() *MockSMSService {
	return &MockSMSService{
		SentMessages: make([]MockSMSMessage, 0),
	}
}

func (m *MockSMSService) SendSMS(to, message string) error {
	m.SentMessages = append(m.SentMessages, MockSMSMessage{To: to, Message: message})
	return nil
}
