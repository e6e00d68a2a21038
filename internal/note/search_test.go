package note

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCriteria() SearchCriteria {
	return SearchCriteria{
		UserID:  uuid.New(),
		Query:   "meeting notes",
		Section: SectionPrivate,
		Page:    1,
		PerPage: 15,
	}
}

func TestSearchCriteriaValidate(t *testing.T) {
	t.Run("query only", func(t *testing.T) {
		c := validCriteria()
		require.NoError(t, c.Validate())
	})

	t.Run("tags only", func(t *testing.T) {
		c := validCriteria()
		c.Query = ""
		c.TagIDs = []uuid.UUID{uuid.New()}
		require.NoError(t, c.Validate())
	})

	t.Run("no criteria", func(t *testing.T) {
		c := validCriteria()
		c.Query = ""
		require.Error(t, c.Validate())
	})

	t.Run("whitespace query is no criteria", func(t *testing.T) {
		c := validCriteria()
		c.Query = "   "
		require.Error(t, c.Validate())
	})

	t.Run("query too short", func(t *testing.T) {
		c := validCriteria()
		c.Query = "a"
		require.Error(t, c.Validate())
	})

	t.Run("length counts runes not bytes", func(t *testing.T) {
		c := validCriteria()
		c.Query = "é" // one rune, two bytes
		require.Error(t, c.Validate())

		c = validCriteria()
		c.Query = "éé"
		require.NoError(t, c.Validate())
	})

	t.Run("query trimmed to two chars passes", func(t *testing.T) {
		c := validCriteria()
		c.Query = "  ab  "
		require.NoError(t, c.Validate())
		assert.Equal(t, "ab", c.Query)
	})

	t.Run("too many tags", func(t *testing.T) {
		c := validCriteria()
		c.TagIDs = make([]uuid.UUID, maxSearchTags+1)
		for i := range c.TagIDs {
			c.TagIDs[i] = uuid.New()
		}
		require.Error(t, c.Validate())
	})

	t.Run("tag cap exactly", func(t *testing.T) {
		c := validCriteria()
		c.TagIDs = make([]uuid.UUID, maxSearchTags)
		for i := range c.TagIDs {
			c.TagIDs[i] = uuid.New()
		}
		require.NoError(t, c.Validate())
	})

	t.Run("bad section", func(t *testing.T) {
		c := validCriteria()
		c.Section = "everything"
		require.Error(t, c.Validate())
	})

	t.Run("bad page", func(t *testing.T) {
		c := validCriteria()
		c.Page = 0
		require.Error(t, c.Validate())
	})

	t.Run("every rejection is a validation error", func(t *testing.T) {
		c := validCriteria()
		c.Query = ""
		err := c.Validate()
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})
}
