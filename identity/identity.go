// Package identity classifies user identifiers.
//
// A user identifier has the form platform:sender_id:session_id. It is
// canonical when session_id is the durable external user id. A legacy bug
// produced malformed identifiers where the session component embeds the
// sender prefix, as in "qq:12345:12345_987654", whose canonical form is
// "qq:12345:987654".
//
// Classification is purely syntactic, it never looks at account content.
package identity

import "strings"

// Separator separates the components of an identifier.
const Separator = ":"

// Kind is the outcome of a classification.
type Kind int

const (
	// Canonical identifiers, and identifiers of an unrecognized shape, are left untouched.
	Canonical Kind = iota
	// Malformed identifiers carry the sender prefix in their session component.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Canonical:
		return "canonical"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Result holds the classification of an identifier.
type Result struct {
	ID       string // classified identifier
	Kind     Kind
	Platform string
	SenderID string
	RealID   string   // external user id, only set for Malformed
	rest     []string // components after the session one, if any
}

// Classify inspects an identifier.
//
// Identifiers with fewer than three components are Canonical. The session
// component is malformed when it starts with sender_id + "_"; the prefix is
// stripped as long as it repeats, so that the canonical form of a malformed
// identifier is always classified Canonical. A session made only of sender
// prefixes has no real id and is left untouched.
func Classify(id string) Result {
	parts := strings.Split(id, Separator)
	if len(parts) < 3 {
		return Result{ID: id, Kind: Canonical}
	}
	r := Result{ID: id, Kind: Canonical, Platform: parts[0], SenderID: parts[1], rest: parts[3:]}
	session := parts[2]

	prefix := r.SenderID + "_"
	if !strings.HasPrefix(session, prefix) {
		return r
	}
	realID := session
	for strings.HasPrefix(realID, prefix) {
		realID = realID[len(prefix):]
	}
	if realID == "" {
		return r
	}
	r.Kind = Malformed
	r.RealID = realID
	return r
}

// IsMalformed reports whether id is a malformed identifier.
func IsMalformed(id string) bool { return Classify(id).Kind == Malformed }

// Canonical returns the canonical form of the classified identifier:
// platform:sender_id:real_id for Malformed ones, the identifier itself
// otherwise. Components after the session one are kept.
func (r Result) Canonical() string {
	if r.Kind != Malformed {
		return r.ID
	}
	parts := append([]string{r.Platform, r.SenderID, r.RealID}, r.rest...)
	return strings.Join(parts, Separator)
}
