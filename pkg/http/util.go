package http

import (
	"time"

	xutil "SmartRental/pkg/util"
)

// NotApplicable is written in place of fields that do not apply to a record.
const NotApplicable = "N/A"

// DateOrNA formats t as YYYY-MM-DD, or N/A when nil.
func DateOrNA(t *time.Time) string {
	if t == nil {
		return NotApplicable
	}
	return xutil.FormatDate(*t)
}

// StringOrNA returns s, or N/A when empty.
func StringOrNA(s string) string {
	if s == "" {
		return NotApplicable
	}
	return s
}
