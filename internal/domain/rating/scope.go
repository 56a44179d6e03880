package rating

import (
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// Scope selects which players a rating period updates.
type Scope string

const (
	// ScopeParticipants updates only players that appear in the period's matches.
	ScopeParticipants Scope = "participants"
	// ScopeRegistry updates every registered player; those without games get
	// the no-games deviation relaxation.
	ScopeRegistry Scope = "registry"
)

func ParseScope(raw string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ScopeParticipants:
		return ScopeParticipants, nil
	case ScopeRegistry:
		return ScopeRegistry, nil
	default:
		return "", crerr.Newf("invalid scope %q: valid values are %s, %s", raw, ScopeParticipants, ScopeRegistry)
	}
}

func (s Scope) String() string { return string(s) }
