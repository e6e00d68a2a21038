package note

// Section selects one of the three disjoint visibility partitions of a
// user's notes. For a note the user owns, private and shared-by-me are
// mutually exclusive; shared-with-me only ever holds other owners' notes.
type Section string

const (
	SectionPrivate      Section = "private"
	SectionSharedByMe   Section = "shared-by-me"
	SectionSharedWithMe Section = "shared-with-me"
)

func ParseSection(s string) (Section, error) {
	switch Section(s) {
	case SectionPrivate, SectionSharedByMe, SectionSharedWithMe:
		return Section(s), nil
	}
	return "", invalidf("unknown section %q (want private, shared-by-me or shared-with-me)", s)
}
