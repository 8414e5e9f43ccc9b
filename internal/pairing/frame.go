package pairing

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// InboundFrame is the shape a client sends. Unknown fields are ignored.
type InboundFrame struct {
	Message *string `json:"message" validate:"required"`
}

var frameValidator = validator.New()

// ParseFrame extracts the chat text from a raw client frame.
func ParseFrame(raw []byte) (string, error) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if err := frameValidator.Struct(frame); err != nil {
		return "", fmt.Errorf("%w: missing message field", ErrMalformedInput)
	}
	return *frame.Message, nil
}
