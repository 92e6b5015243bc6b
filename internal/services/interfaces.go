package services

type SMSServiceInterface interface {
	SendSMS(to, message string) error
}

// NoopSMSService is wired in when no SMS credentials are configured.
type NoopSMSService struct{}

func (NoopSMSService) SendSMS(to, message string) error { return nil }
