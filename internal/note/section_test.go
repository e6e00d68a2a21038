package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSection(t *testing.T) {
	for _, s := range []string{"private", "shared-by-me", "shared-with-me"} {
		got, err := ParseSection(s)
		require.NoError(t, err)
		assert.Equal(t, Section(s), got)
	}

	for _, s := range []string{"", "Private", "shared", "all", "shared_by_me"} {
		_, err := ParseSection(s)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "section %q", s)
	}
}
