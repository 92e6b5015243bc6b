package services

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestFormatPhoneNumber(t *testing.T) {
	smsService := NewSMSService("test", "test", "test")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare mobile number",
			input:    "999888777",
			expected: "+51999888777",
		},
		{
			name:     "number with spaces",
			input:    "999 888 777",
			expected: "+51999888777",
		},
		{
			name:     "number with dashes",
			input:    "999-888-777",
			expected: "+51999888777",
		},
		{
			name:     "number with parentheses",
			input:    "(999)888777",
			expected: "+51999888777",
		},
		{
			name:     "country code without plus",
			input:    "51999888777",
			expected: "+51999888777",
		},
		{
			name:     "already formatted international number",
			input:    "+51999888777",
			expected: "+51999888777",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := smsService.formatPhoneNumber(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSendSMS(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	smsService := NewSMSService("sandbox", "test-key", "COMPUCELL")

	t.Run("successful send", func(t *testing.T) {
		httpmock.RegisterResponder("POST", smsService.baseUrl,
			httpmock.NewStringResponder(http.StatusCreated, `{
				"SMSMessageData": {
					"Message": "Sent to 1/1",
					"Recipients": [{"statusCode": 101, "number": "+51999888777", "status": "Success"}]
				}
			}`))

		err := smsService.SendSMS("999888777", IntakeMessage("CS-2025-00001"))
		assert.NoError(t, err)
	})

	t.Run("rejected recipient", func(t *testing.T) {
		httpmock.RegisterResponder("POST", smsService.baseUrl,
			httpmock.NewStringResponder(http.StatusCreated, `{
				"SMSMessageData": {
					"Message": "Sent to 0/1",
					"Recipients": [{"statusCode": 403, "number": "+51999888777", "status": "InvalidSenderId"}]
				}
			}`))

		err := smsService.SendSMS("999888777", "hola")
		assert.Error(t, err)
	})

	t.Run("empty recipients", func(t *testing.T) {
		httpmock.RegisterResponder("POST", smsService.baseUrl,
			httpmock.NewStringResponder(http.StatusCreated, `{"SMSMessageData": {"Recipients": []}}`))

		err := smsService.SendSMS("999888777", "hola")
		assert.Error(t, err)
	})
}

func TestMockSMSService(t *testing.T) {
	mockService := NewMockSMSService()

	err := mockService.SendSMS("+51999888777", "test message")
	assert.NoError(t, err)

	assert.Len(t, mockService.SentMessages, 1)
	assert.Equal(t, "+51999888777", mockService.SentMessages[0].To)
	assert.Equal(t, "test message", mockService.SentMessages[0].Message)
}

func TestSMSServiceCreation(t *testing.T) {
	smsService := NewSMSService("sandbox", "apikey", "COMPUCELL")

	assert.Equal(t, "sandbox", smsService.username)
	assert.Equal(t, "apikey", smsService.apiKey)
	assert.Equal(t, "COMPUCELL", smsService.senderId)
	assert.Equal(t, "https://api.sandbox.africastalking.com/version1/messaging", smsService.baseUrl)
}
