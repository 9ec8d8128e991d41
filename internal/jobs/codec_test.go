package jobs

import (
	"errors"
	"testing"
)

func TestMarshalUnmarshal_WelcomeEmail(t *testing.T) {
	raw, err := Marshal(JobSendWelcomeEmail, EmailPayload{To: "ann@example.com", Name: "Ann"}, "req-1")
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	j, decoded, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if j.Type != JobSendWelcomeEmail {
		t.Fatalf("expected type %s, got %s", JobSendWelcomeEmail, j.Type)
	}
	if j.RequestID != "req-1" {
		t.Fatalf("expected request id to survive, got %q", j.RequestID)
	}
	if j.ID == "" {
		t.Fatalf("expected job id")
	}

	p, ok := decoded.(EmailPayload)
	if !ok {
		t.Fatalf("expected EmailPayload, got %T", decoded)
	}
	if p.To != "ann@example.com" || p.Name != "Ann" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobSendCancellationEmail, map[string]string{"to": "x"})
	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodePayload_UnknownType(t *testing.T) {
	_, err := EncodePayload(JobType("publish_event"), EmailPayload{To: "x"})
	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestValidatePayload_RequiresRecipient(t *testing.T) {
	if err := ValidatePayload(JobSendWelcomeEmail, EmailPayload{To: "  "}); !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}

func TestUnmarshal_Garbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", "{", ErrInvalidJobPayload},
		{"unknown type", `{"type":"nope","payload":{"to":"a@b.c"}}`, ErrInvalidJobType},
		{"empty payload", `{"type":"send_welcome_email"}`, ErrInvalidJobPayload},
		{"missing recipient", `{"type":"send_welcome_email","payload":{"name":"x"}}`, ErrInvalidJobPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Unmarshal([]byte(tt.raw)); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
