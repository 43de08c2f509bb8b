package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Ana Ruiz", want: "CV_Ana_Ruiz.pdf"},
		{in: "  Ana   María\tRuiz ", want: "CV_Ana_María_Ruiz.pdf"},
		{in: "", want: "CV_Resume.pdf"},
		{in: "   ", want: "CV_Resume.pdf"},
		{in: "../../etc/passwd", want: "CV_etcpasswd.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportFilename(tt.in))
		})
	}
}

func TestASCIIFilename(t *testing.T) {
	assert.Equal(t, "CV_Jose_Nunez.pdf", ASCIIFilename("CV_José_Núñez.pdf"))
	assert.Equal(t, "CV_Ana_Ruiz.pdf", ASCIIFilename("CV_Ana_Ruiz.pdf"))
	assert.Equal(t, "CV___.pdf", ASCIIFilename("CV_李明.pdf"))
}
