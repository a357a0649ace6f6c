package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "poll.interval")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// MinPollInterval is the shortest accepted poll.interval.
const MinPollInterval = 100 * time.Millisecond

// MaxGalleryColumns is the widest fixed gallery layout.
const MaxGalleryColumns = 3

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validatePoll()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)
	return errors
}

func (c *Config) validateAPI() []ValidationError {
	var errors []ValidationError

	u, err := url.Parse(c.API.URL)
	switch {
	case c.API.URL == "":
		errors = append(errors, ValidationError{
			Field:   "api.url",
			Value:   c.API.URL,
			Message: "must not be empty",
		})
	case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errors = append(errors, ValidationError{
			Field:   "api.url",
			Value:   c.API.URL,
			Message: "must be an absolute http(s) URL",
		})
	}

	if c.API.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Value:   c.API.Timeout,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validatePoll() []ValidationError {
	if c.Poll.Interval < MinPollInterval {
		return []ValidationError{{
			Field:   "poll.interval",
			Value:   c.Poll.Interval,
			Message: fmt.Sprintf("must be at least %s", MinPollInterval),
		}}
	}
	return nil
}

func (c *Config) validateTUI() []ValidationError {
	if c.TUI.GalleryColumns < 0 || c.TUI.GalleryColumns > MaxGalleryColumns {
		return []ValidationError{{
			Field:   "tui.gallery_columns",
			Value:   c.TUI.GalleryColumns,
			Message: fmt.Sprintf("must be between 0 (responsive) and %d", MaxGalleryColumns),
		}}
	}
	return nil
}

func (c *Config) validateLogging() []ValidationError {
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		return []ValidationError{{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		}}
	}
	return nil
}
