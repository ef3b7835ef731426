package dto

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"defecttracker/internal/domain"
)

const commentMax = 1000

type CommentRequest struct {
	Content string `json:"content"`
}

func (r CommentRequest) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(r.Content))
	if n < 1 || n > commentMax {
		return fmt.Errorf("%w: content must be between 1 and %d characters", domain.ErrValidation, commentMax)
	}
	return nil
}
