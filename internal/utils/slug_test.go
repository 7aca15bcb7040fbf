package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Backend Team":    "backend-team",
		"  Design & UX  ": "design-ux",
		"Café Été":        "café-été",
		"release--2024!!": "release-2024",
		"":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestUniqueSlug(t *testing.T) {
	slug, err := UniqueSlug("Platform Team")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^platform-team-[0-9a-f]{6}$`), slug)

	other, err := UniqueSlug("Platform Team")
	require.NoError(t, err)
	assert.NotEqual(t, slug, other)
}
