package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// ValidateWorkbookName checks that name refers to an .xlsx workbook.
// Legacy .xls files and Excel lock files (~$name.xlsx) are rejected.
func ValidateWorkbookName(name string) error {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return fmt.Errorf("workbook name is empty")
	}
	if !strings.EqualFold(filepath.Ext(base), ".xlsx") {
		return fmt.Errorf("not an .xlsx workbook: %s", base)
	}
	if strings.HasPrefix(base, "~$") {
		return fmt.Errorf("excel lock file is not a workbook: %s", base)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
