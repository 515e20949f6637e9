package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResendProviderSendSuccess(t *testing.T) {
	t.Parallel()

	var gotBody resendRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"re-msg-1"}`))
	}))
	defer server.Close()

	p, err := NewResendProviderWithClient(server.URL, newTestClient())
	if err != nil {
		t.Fatalf("NewResendProviderWithClient() error = %v", err)
	}

	mail := Mail{
		From:    "Visitor System <visitors@example.com>",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Visitor Status Update",
		HTML:    "The following guests returned.<br>See dashboard.",
	}

	result, err := p.Send(context.Background(), mail)
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}

	if result.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want %d", result.StatusCode, http.StatusOK)
	}
	if result.MessageID != "re-msg-1" {
		t.Fatalf("MessageID = %q, want re-msg-1", result.MessageID)
	}

	if len(gotBody.To) != 2 {
		t.Fatalf("request.to has %d entries, want 2 (single call with full recipient set)", len(gotBody.To))
	}
	if gotBody.Subject != mail.Subject {
		t.Fatalf("request.subject = %q, want %q", gotBody.Subject, mail.Subject)
	}
	if gotBody.HTML != mail.HTML {
		t.Fatalf("request.html = %q, want %q", gotBody.HTML, mail.HTML)
	}
}

func TestResendProviderSendFailureStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer server.Close()

	p, err := NewResendProviderWithClient(server.URL, newTestClient())
	if err != nil {
		t.Fatalf("NewResendProviderWithClient() error = %v", err)
	}

	_, err = p.Send(context.Background(), Mail{
		From:    "bad",
		To:      []string{"a@example.com"},
		Subject: "s",
		HTML:    "b",
	})
	if err == nil {
		t.Fatal("Send() error = nil, want TransportError")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Send() error = %v, want *TransportError", err)
	}
	if transportErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("StatusCode = %d, want 422", transportErr.StatusCode)
	}
}

func TestResendProviderSendConnectionError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p, err := NewResendProviderWithClient(server.URL, newTestClient())
	if err != nil {
		t.Fatalf("NewResendProviderWithClient() error = %v", err)
	}

	_, err = p.Send(context.Background(), Mail{
		From:    "f@example.com",
		To:      []string{"a@example.com"},
		Subject: "s",
		HTML:    "b",
	})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Send() error = %v, want *TransportError", err)
	}
}

func TestResendProviderRejectsEmptyRecipients(t *testing.T) {
	t.Parallel()

	p, err := NewResendProviderWithClient("https://api.resend.test/emails", newTestClient())
	if err != nil {
		t.Fatalf("NewResendProviderWithClient() error = %v", err)
	}

	if _, err := p.Send(context.Background(), Mail{From: "f@example.com", Subject: "s", HTML: "b"}); err == nil {
		t.Fatal("Send() with no recipients succeeded, want error")
	}
}
