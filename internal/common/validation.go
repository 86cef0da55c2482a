package common

import (
	"fmt"
	"slices"

	"atsmatch/internal/errors"
	"atsmatch/internal/formatters"
)

// ValidateOutputFormat checks format against the configured formats and the
// formats the registry can render. An empty configured list allows every
// registry format.
func ValidateOutputFormat(format string, configured []string, registry *formatters.FormatterRegistry) error {
	available := SupportedFormats(configured, registry)
	if slices.Contains(available, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, available), nil)
}

// SupportedFormats returns the configured formats the registry can render, in
// configured order.
func SupportedFormats(configured []string, registry *formatters.FormatterRegistry) []string {
	renderable := registry.GetSupportedFormats()
	if len(configured) == 0 {
		return renderable
	}

	formats := make([]string, 0, len(configured))
	for _, f := range configured {
		if slices.Contains(renderable, f) {
			formats = append(formats, f)
		}
	}
	return formats
}
