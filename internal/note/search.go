package note

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxSearchTags = 10

// SearchCriteria is everything a search needs: the viewing user, the
// section to search in, optional text query and tag filter, and the
// page window. At least one of Query/TagIDs must be present; a plain
// listing without criteria is a separate operation.
type SearchCriteria struct {
	UserID  uuid.UUID
	Query   string
	TagIDs  []uuid.UUID
	Section Section
	Page    int
	PerPage int
}

func (c *SearchCriteria) HasTextSearch() bool {
	return strings.TrimSpace(c.Query) != ""
}

func (c *SearchCriteria) HasTagFilter() bool {
	return len(c.TagIDs) > 0
}

// Validate normalizes the query and enforces the search business rules.
// Tag ids are deliberately NOT checked against the catalog here: an
// unknown id can never be satisfied by the AND filter and therefore
// yields zero matches instead of an error.
func (c *SearchCriteria) Validate() error {
	if err := ValidatePage(c.Page, c.PerPage); err != nil {
		return err
	}
	if _, err := ParseSection(string(c.Section)); err != nil {
		return err
	}
	c.Query = strings.TrimSpace(c.Query)
	if !c.HasTextSearch() && !c.HasTagFilter() {
		return invalidf("search requires a query or at least one tag")
	}
	if c.HasTextSearch() && utf8.RuneCountInString(c.Query) < 2 {
		return invalidf("search query must be at least 2 characters long")
	}
	if len(c.TagIDs) > maxSearchTags {
		return invalidf("cannot filter by more than %d tags at once", maxSearchTags)
	}
	return nil
}
