package impl

import (
	"errors"
	"fmt"

	"defecttracker/internal/domain"
)

var (
	ErrEmptyPassword   = fmt.Errorf("%w: empty password", domain.ErrValidation)
	ErrEmptyCredential = fmt.Errorf("%w: empty credential(s)", domain.ErrValidation)

	errSerialTaken = errors.New("serial number already taken")
)
