package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/naturlife/storefront/internal/domain/job"
)

// EncodePayload validates the payload against its job type and marshals it.
func EncodePayload(t JobType, payload any) (json.RawMessage, error) {
	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// NewCreateRequest builds the enqueue request for a typed payload, keyed for idempotency.
func NewCreateRequest(t JobType, payload any, key string) (job.CreateRequest, error) {
	raw, err := EncodePayload(t, payload)
	if err != nil {
		return job.CreateRequest{}, err
	}

	req := job.CreateRequest{
		Type:    string(t),
		Payload: raw,
	}
	if key != "" {
		req.IdempotencyKey = &key
	}
	return req, nil
}

// DecodePayload unmarshals job.Payload into the correct typed payload struct.
func DecodePayload(j job.Job) (any, error) {
	t := JobType(j.Type)
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	var out any
	switch t {
	case JobOrderConfirmation:
		var p OrderConfirmationPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		out = p

	case JobWelcomeEmail:
		var p WelcomeEmailPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		out = p
	}

	if err := ValidatePayload(t, out); err != nil {
		return nil, err
	}
	return out, nil
}
