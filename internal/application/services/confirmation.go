package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

const (
	confirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	confirmationLength   = 8
	confirmationAttempts = 5
)

// NewConfirmationNumber returns a random 8-character [A-Z0-9] code.
func NewConfirmationNumber() (string, error) {
	limit := big.NewInt(int64(len(confirmationAlphabet)))
	code := make([]byte, confirmationLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate confirmation number: %w", err)
		}
		code[i] = confirmationAlphabet[n.Int64()]
	}
	return string(code), nil
}

// insertWithConfirmation calls insert with fresh codes until it stops
// reporting a duplicate, at most confirmationAttempts times.
func insertWithConfirmation(generate func() (string, error), insert func(code string) error) error {
	for attempt := 0; attempt < confirmationAttempts; attempt++ {
		code, err := generate()
		if err != nil {
			return apperrors.NewInternalError("failed to generate confirmation number", err)
		}
		err = insert(code)
		if !errors.Is(err, repositories.ErrDuplicateConfirmationNumber) {
			return err
		}
	}
	return apperrors.NewInternalError("could not allocate a unique confirmation number", repositories.ErrDuplicateConfirmationNumber)
}
