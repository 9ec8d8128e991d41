package jobs

import "strings"

// ValidatePayload performs minimal validation on decoded payloads.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	var p EmailPayload
	switch v := payload.(type) {
	case EmailPayload:
		p = v
	case *EmailPayload:
		if v == nil {
			return ErrInvalidJobPayload
		}
		p = *v
	default:
		return ErrPayloadTypeMismatch
	}

	if strings.TrimSpace(p.To) == "" {
		return ErrInvalidJobPayload
	}
	return nil
}
