// File: internal/services/sms/interface.go
package sms

import "context"

// ProviderStatus represents the health status of SMS provider
type ProviderStatus struct {
	IsHealthy bool
	Message   string
}

type Provider interface {
	SendAlert(ctx context.Context, phone, text string) error
	HealthCheck(ctx context.Context) error
}
