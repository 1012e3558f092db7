package reconcile

import (
	"fmt"
	"log"
	"slices"

	"github.com/etnz/papertrading"
	"github.com/etnz/papertrading/identity"
)

// Side names the record kept when a remap collides with an existing one.
type Side string

const (
	KeptExisting  Side = "existing"  // the record already under the canonical id is kept
	KeptMigrating Side = "migrating" // a malformed record migrated to the canonical id is kept
)

// Remap is the move of a malformed identifier to its canonical form.
type Remap struct {
	Old string
	New string
}

// Conflict records a remap whose canonical identifier was already taken.
// The old record is discarded. Kept tells whether the record kept under New
// was already there, or is another malformed record migrated by the plan.
type Conflict struct {
	Store           string // store file the conflict happened in
	Old             string
	New             string
	Kept            Side
	ExistingAssets  string // total_assets of the kept record, "" when unknown
	MigratingAssets string // total_assets of the discarded record, "" when unknown
}

// Plan maps malformed identifiers to their canonical form.
//
// It is computed once per run from the pre-mutation accounts, and then
// applied uniformly to every store. Conflicting remaps are part of the plan:
// records referring to a discarded account follow it to the kept one.
type Plan struct {
	remaps    []Remap           // every malformed id, sorted by old id
	targets   map[string]string // old -> new
	conflicts map[string]Conflict
	warnings  []string
}

// NewPlan classifies every account key and computes its remap.
//
// A malformed key whose canonical target is already an account is a
// conflict: the existing account is kept unconditionally. Two malformed keys
// with the same target are conflicts too: the first one in sorted order
// migrates and is kept, the following ones are discarded with a warning.
func NewPlan(accounts papertrading.Collection) *Plan {
	p := &Plan{
		targets:   make(map[string]string),
		conflicts: make(map[string]Conflict),
	}

	keys := make([]string, 0, len(accounts))
	for k := range accounts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	claimed := make(map[string]string) // new -> old, for malformed to malformed collisions
	for _, old := range keys {
		r := identity.Classify(old)
		if r.Kind != identity.Malformed {
			continue
		}
		target := r.Canonical()
		p.remaps = append(p.remaps, Remap{Old: old, New: target})
		p.targets[old] = target
		log.Printf("malformed-id old=%q new=%q", old, target)

		if existing, ok := accounts[target]; ok {
			c := Conflict{
				Store:           papertrading.UsersFile,
				Old:             old,
				New:             target,
				Kept:            KeptExisting,
				ExistingAssets:  lookupText(existing, "$.total_assets"),
				MigratingAssets: lookupText(accounts[old], "$.total_assets"),
			}
			p.conflicts[old] = c
			log.Printf("conflict store=%q new=%q kept=existing existing_assets=%s discarded=%q discarded_assets=%s",
				c.Store, target, c.ExistingAssets, old, c.MigratingAssets)
			continue
		}
		if first, ok := claimed[target]; ok {
			c := Conflict{
				Store:           papertrading.UsersFile,
				Old:             old,
				New:             target,
				Kept:            KeptMigrating,
				ExistingAssets:  lookupText(accounts[first], "$.total_assets"),
				MigratingAssets: lookupText(accounts[old], "$.total_assets"),
			}
			p.conflicts[old] = c
			w := fmt.Sprintf("malformed ids %q and %q both map to %q, keeping %q as it sorts first", first, old, target, first)
			p.warnings = append(p.warnings, w)
			log.Printf("warning: %s (kept_assets=%s discarded_assets=%s)", w, c.ExistingAssets, c.MigratingAssets)
			continue
		}
		claimed[target] = old
	}
	return p
}

// Empty reports whether there is nothing to remap.
func (p *Plan) Empty() bool { return len(p.remaps) == 0 }

// Len returns the number of malformed identifiers.
func (p *Plan) Len() int { return len(p.remaps) }

// Lookup returns the canonical identifier old maps to.
func (p *Plan) Lookup(old string) (string, bool) {
	n, ok := p.targets[old]
	return n, ok
}

// Remaps returns every remap of the plan, sorted by old identifier.
func (p *Plan) Remaps() []Remap { return slices.Clone(p.remaps) }

// Conflict returns the account conflict of old, if any.
func (p *Plan) Conflict(old string) (Conflict, bool) {
	c, ok := p.conflicts[old]
	return c, ok
}

// Conflicts returns the account conflicts, sorted by old identifier.
func (p *Plan) Conflicts() []Conflict {
	var list []Conflict
	for _, r := range p.remaps {
		if c, ok := p.conflicts[r.Old]; ok {
			list = append(list, c)
		}
	}
	return list
}

// Warnings returns anomalies found while planning.
func (p *Plan) Warnings() []string { return slices.Clone(p.warnings) }
