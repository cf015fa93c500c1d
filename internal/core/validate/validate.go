// Package validate provides shared validation functions for user input.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// Required validates a value is non-empty after trimming whitespace.
func Required(label, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", label)
	}
	return nil
}

// Credentials validates login input before it is sent to the server.
func Credentials(username, password string) error {
	var errs criterio.FieldErrorsBuilder
	if err := Required("username", username); err != nil {
		errs = errs.Append("username", err)
	}
	if password == "" {
		errs = errs.Append("password", errors.New("password is required"))
	}
	return errs.ToError()
}

// LeadID validates an id argument passed on the command line.
func LeadID(id string) error {
	if err := Required("lead id", id); err != nil {
		return err
	}
	if strings.ContainsAny(id, "/?#") {
		return fmt.Errorf("lead id %q contains reserved characters", id)
	}
	return nil
}
