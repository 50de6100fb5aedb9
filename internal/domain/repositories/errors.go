package repositories

import "errors"

// ErrDuplicateConfirmationNumber is returned by Create when the generated
// confirmation number is already taken. Callers regenerate and retry.
var ErrDuplicateConfirmationNumber = errors.New("confirmation number already in use")
