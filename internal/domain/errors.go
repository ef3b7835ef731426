package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrDefectNotFound     = errors.New("defect not found")
	ErrDefectDeleted      = errors.New("defect is deleted")
	ErrNotRestorable      = errors.New("defect is not deleted")
	ErrVersionNotFound    = errors.New("version not found")
	ErrSerialConflict     = errors.New("could not allocate a unique serial number")
	ErrCommentNotFound    = errors.New("comment not found or not authorized")
	ErrInvalidAuditType   = errors.New("invalid audit log type")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user inactive")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrIdentityTaken      = errors.New("email or username already taken")
)
