package validate

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinUsernameLen int = 3
	MaxUsernameLen int = 64

	MaxFullNameLen int = 128
)

func Register(username, email, fullName string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return fmt.Errorf("username length must be between %d and %d", MinUsernameLen, MaxUsernameLen)
	}

	if !strings.Contains(email, "@") {
		return errors.New("email is invalid")
	}

	if len(fullName) > MaxFullNameLen {
		return fmt.Errorf("fullName length must be at most %d", MaxFullNameLen)
	}

	return nil
}
