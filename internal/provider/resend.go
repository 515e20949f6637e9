package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultResendTimeout  = 10 * time.Second
	defaultResendEndpoint = "https://api.resend.com/emails"
)

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// ResendProvider delivers mail through the Resend HTTP API.
type ResendProvider struct {
	client   *resty.Client
	endpoint string
}

func NewResendProvider(apiKey string) (*ResendProvider, error) {
	client := resty.New()
	client.SetTimeout(defaultResendTimeout)
	client.SetRetryCount(0)
	client.SetAuthToken(strings.TrimSpace(apiKey))

	return NewResendProviderWithClient(defaultResendEndpoint, client)
}

func NewResendProviderWithClient(endpoint string, client *resty.Client) (*ResendProvider, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("resend endpoint is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultResendTimeout)
	}
	client.SetRetryCount(0)

	return &ResendProvider{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (p *ResendProvider) Send(ctx context.Context, mail Mail) (*SendResult, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}
	if len(mail.To) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	reqBody := resendRequest{
		From:    mail.From,
		To:      mail.To,
		Subject: mail.Subject,
		HTML:    mail.HTML,
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(p.endpoint)
	if err != nil {
		return nil, &TransportError{
			Message: "provider request failed",
			Cause:   err,
		}
	}
	if response == nil {
		return nil, &TransportError{
			Message: "provider returned empty response",
		}
	}

	statusCode := response.StatusCode()
	responseBody := strings.TrimSpace(response.String())

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return &SendResult{
			StatusCode: statusCode,
			MessageID:  resendMessageID(responseBody),
		}, nil
	}

	message := fmt.Sprintf("provider returned status %d", statusCode)
	if responseBody != "" {
		message = fmt.Sprintf("%s: %s", message, responseBody)
	}
	return nil, &TransportError{
		StatusCode: statusCode,
		Message:    message,
	}
}

func resendMessageID(body string) string {
	var parsed resendResponse
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.ID)
}
