package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"plain title", "Office Closed For Dashain", "office-closed-for-dashain"},
		{"punctuation collapses", "New rules: what changed?!", "new-rules-what-changed"},
		{"leading and trailing noise", "  --Hello--  ", "hello"},
		{"digits kept", "Top 10 signs", "top-10-signs"},
		{"consecutive separators", "a  __  b", "a-b"},
		{"unicode letters kept", "सडक नियम", "सडक-नियम"},
		{"only noise", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, slugify(tc.title))
		})
	}
}
