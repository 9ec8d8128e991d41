package jobs

import (
	"encoding/json"
	"fmt"
)

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch payload.(type) {
	case EmailPayload, *EmailPayload:
	default:
		return nil, ErrPayloadTypeMismatch
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals job.Payload into the payload struct for its type.
func DecodePayload(j Job) (any, error) {
	if !j.Type.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case JobSendWelcomeEmail, JobSendCancellationEmail:
		var p EmailPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}

// Marshal builds a job of type t around payload and returns its wire form.
func Marshal(t JobType, payload any, requestID string) ([]byte, error) {
	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}
	body, err := EncodePayload(t, payload)
	if err != nil {
		return nil, err
	}
	j, err := NewJob(t, body)
	if err != nil {
		return nil, err
	}
	j.RequestID = requestID

	return json.Marshal(j)
}

// Unmarshal parses a queued job and returns it with its validated payload.
func Unmarshal(raw []byte) (Job, any, error) {
	var j Job
	if err := json.Unmarshal(raw, &j); err != nil {
		return Job{}, nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	p, err := DecodePayload(j)
	if err != nil {
		return j, nil, err
	}
	if err := ValidatePayload(j.Type, p); err != nil {
		return j, nil, err
	}
	return j, p, nil
}
