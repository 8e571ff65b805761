package jobs

import "strings"

// ValidatePayload checks the payload matches its type and carries the identifiers the handler needs.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	trim := func(s string) string { return strings.TrimSpace(s) }

	switch t {
	case JobOrderConfirmation:
		var p OrderConfirmationPayload
		switch v := payload.(type) {
		case OrderConfirmationPayload:
			p = v
		case *OrderConfirmationPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.OrderID) == "" || trim(p.UserID) == "" || trim(p.Email) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobWelcomeEmail:
		var p WelcomeEmailPayload
		switch v := payload.(type) {
		case WelcomeEmailPayload:
			p = v
		case *WelcomeEmailPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.UserID) == "" || trim(p.Email) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
