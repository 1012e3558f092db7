// Package reconcile repairs malformed user identifiers across the stores.
//
// A legacy bug stored some accounts under identifiers whose session
// component repeats the sender prefix (see the identity package). The same
// identifiers leaked as keys of the positions store and as the user_id of
// orders. Run computes, once, a plan remapping every malformed identifier to
// its canonical form and applies it to the three stores.
//
// When the canonical identifier already has an account, the existing account
// is kept and the malformed one is discarded. Positions follow the same
// policy. Orders only have their user_id rewritten.
//
// Before anything is written, the store files are copied into a backup folder.
// Reconciliation is an offline operation: no other process is expected to
// use the stores while it runs.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/etnz/papertrading"
)

// Reconciliation errors. They are returned wrapped, test them with errors.Is.
var (
	ErrStoreNotFound = errors.New("store not found")
	ErrIO            = errors.New("store i/o error")
	ErrBackupFailed  = errors.New("backup failed")
)

// Options tune a reconciliation run.
type Options struct {
	// DryRun computes the plan and the report without any backup or write.
	DryRun bool
	// Now is the clock used to name the backup folder, time.Now when nil.
	Now func() time.Time
}

// writeCollection is replaced in tests to simulate write failures.
var writeCollection = papertrading.WriteCollection

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Stage names, in execution order.
const (
	StageLoad      = "load"
	StagePlan      = "plan"
	StageBackup    = "backup"
	StageUsers     = papertrading.UsersFile
	StagePositions = papertrading.PositionsFile
	StageOrders    = papertrading.OrdersFile
)

// Run reconciles the stores in the root folder.
//
// It fails with ErrStoreNotFound if root or its users.json is missing, and
// with ErrIO on read or write failures. The positions and orders files are
// optional. Failures before the backup leave the stores untouched; after the
// backup, the already written files stay as they are and the returned report
// tells which stages completed. The report is never nil.
//
// A run with nothing to fix writes nothing: running Run twice in a row makes
// the second run a no-op.
func Run(ctx context.Context, root string, opts Options) (*Report, error) {
	r := &Report{Root: root, DryRun: opts.DryRun}

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return r, fmt.Errorf("%w: %q is not a store folder", ErrStoreNotFound, root)
	}
	usersPath := filepath.Join(root, papertrading.UsersFile)
	if _, err := os.Stat(usersPath); err != nil {
		return r, fmt.Errorf("%w: %w", ErrStoreNotFound, err)
	}

	// Load every store before anything else, the plan and the changes are
	// computed from this snapshot.
	snapshot := make(map[string]papertrading.Collection)
	var present []string
	for _, name := range papertrading.StoreFiles {
		c, err := papertrading.ReadCollection(filepath.Join(root, name))
		if errors.Is(err, fs.ErrNotExist) && name != papertrading.UsersFile {
			log.Printf("skip-store name=%q reason=missing", name)
			continue
		}
		if err != nil {
			return r, fmt.Errorf("%w: %w", ErrIO, err)
		}
		snapshot[name] = c
		present = append(present, name)
	}
	r.done(StageLoad, false)

	plan := NewPlan(snapshot[papertrading.UsersFile])
	r.MalformedFound = plan.Len()
	r.Remaps = plan.Remaps()
	r.Conflicts = plan.Conflicts()
	r.Warnings = append(r.Warnings, plan.Warnings()...)
	r.done(StagePlan, !plan.Empty())
	log.Printf("plan accounts=%d malformed=%d conflicts=%d", len(snapshot[papertrading.UsersFile]), plan.Len(), len(r.Conflicts))
	if plan.Empty() {
		return r, nil
	}

	// Compute every change in memory.
	type change struct {
		name string
		c    papertrading.Collection
	}
	var changes []change

	users, moved, warnings := applyAccounts(plan, snapshot[papertrading.UsersFile])
	r.Remapped = moved
	r.Warnings = append(r.Warnings, warnings...)
	changes = append(changes, change{papertrading.UsersFile, users})

	if positions, ok := snapshot[papertrading.PositionsFile]; ok {
		next, moved, conflicts, changed := applyPositions(plan, positions)
		r.PositionsMoved = moved
		r.PositionConflicts = conflicts
		if changed {
			changes = append(changes, change{papertrading.PositionsFile, next})
		}
	}
	if orders, ok := snapshot[papertrading.OrdersFile]; ok {
		next, updated, warnings := applyOrders(plan, orders)
		r.OrdersUpdated = updated
		r.Warnings = append(r.Warnings, warnings...)
		if updated > 0 {
			changes = append(changes, change{papertrading.OrdersFile, next})
		}
	}

	if opts.DryRun {
		return r, nil
	}
	if err := ctx.Err(); err != nil {
		return r, err
	}

	dir, err := backup(root, present, opts.now())
	r.BackupDir = dir
	if err != nil {
		return r, err
	}
	r.done(StageBackup, true)

	for _, ch := range changes {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		path := filepath.Join(root, ch.name)
		if err := writeCollection(path, ch.c); err != nil {
			return r, fmt.Errorf("%w: %w", ErrIO, err)
		}
		log.Printf("write-store name=%q records=%d", path, len(ch.c))
		r.done(ch.name, true)
	}
	// unchanged stores are complete too
	for _, name := range present {
		if !r.Completed(name) {
			r.done(name, false)
		}
	}
	return r, nil
}

// applyAccounts moves every non conflicting malformed account to its canonical
// id, with its user_id updated, and drops the conflicting ones.
func applyAccounts(p *Plan, users papertrading.Collection) (out papertrading.Collection, moved int, warnings []string) {
	out = maps.Clone(users)
	for _, rm := range p.Remaps() {
		payload := out[rm.Old]
		delete(out, rm.Old)
		if _, conflict := p.Conflict(rm.Old); conflict {
			log.Printf("discard-account old=%q kept=%q", rm.Old, rm.New)
			continue
		}
		updated, err := setString(payload, attrUserID, rm.New)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("account %q moved to %q without updating its user_id: %v", rm.Old, rm.New, err))
			updated = payload
		}
		out[rm.New] = updated
		moved++
		log.Printf("remap-account old=%q new=%q", rm.Old, rm.New)
	}
	return out, moved, warnings
}

// applyPositions moves the positions of every malformed id. The positions
// already under the canonical id win.
func applyPositions(p *Plan, positions papertrading.Collection) (out papertrading.Collection, moved int, conflicts []Conflict, changed bool) {
	out = maps.Clone(positions)
	for _, rm := range p.Remaps() {
		payload, ok := out[rm.Old]
		if !ok {
			continue
		}
		changed = true
		delete(out, rm.Old)
		if _, taken := out[rm.New]; taken {
			conflicts = append(conflicts, Conflict{
				Store: papertrading.PositionsFile,
				Old:   rm.Old,
				New:   rm.New,
				Kept:  KeptExisting,
			})
			log.Printf("conflict store=%q new=%q kept=existing discarded=%q", papertrading.PositionsFile, rm.New, rm.Old)
			continue
		}
		out[rm.New] = payload
		moved++
		log.Printf("remap-positions old=%q new=%q", rm.Old, rm.New)
	}
	return out, moved, conflicts, changed
}

// applyOrders rewrites the user_id of orders placed by a malformed id.
func applyOrders(p *Plan, orders papertrading.Collection) (out papertrading.Collection, updated int, warnings []string) {
	out = maps.Clone(orders)
	ids := slices.Sorted(maps.Keys(orders))
	for _, id := range ids {
		uid, ok := lookupString(orders[id], "$.user_id")
		if !ok {
			continue
		}
		target, ok := p.Lookup(uid)
		if !ok {
			continue
		}
		rewritten, err := setString(orders[id], attrUserID, target)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("order %q of %q not updated: %v", id, uid, err))
			continue
		}
		out[id] = rewritten
		updated++
	}
	log.Printf("remap-orders updated=%d", updated)
	return out, updated, warnings
}
