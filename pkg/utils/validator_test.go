package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateWorkbookName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "xlsx", input: "钉钉考勤_202512.xlsx"},
		{name: "upper case extension", input: "EXPORT.XLSX"},
		{name: "path", input: "/tmp/in/export.xlsx"},
		{name: "legacy xls", input: "export.xls", wantErr: true},
		{name: "csv", input: "export.csv", wantErr: true},
		{name: "no extension", input: "export", wantErr: true},
		{name: "lock file", input: "~$export.xlsx", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkbookName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "考勤.xlsx", SanitizeString("考\x00勤\n.xlsx\x7f"))
	assert.Equal(t, "plain", SanitizeString("plain"))
}
