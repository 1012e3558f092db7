package reconcile

import (
	"fmt"
	"strings"
)

// Stage is the progress of one step of a run.
type Stage struct {
	Name    string
	Changed bool // the stage modified something (or would have, in a dry run)
}

// Report describes what a run found and did.
type Report struct {
	Root      string
	DryRun    bool
	BackupDir string // empty when no backup was made

	MalformedFound    int        // malformed account ids
	Remaps            []Remap    // every malformed id and its canonical form
	Remapped          int        // accounts moved to their canonical id
	Conflicts         []Conflict // accounts discarded in favor of an existing one
	PositionsMoved    int
	PositionConflicts []Conflict
	OrdersUpdated     int
	Warnings          []string

	Stages []Stage // completed stages, in order
}

func (r *Report) done(name string, changed bool) {
	r.Stages = append(r.Stages, Stage{Name: name, Changed: changed})
}

// Completed reports whether the stage called name completed.
func (r *Report) Completed(name string) bool {
	for _, s := range r.Stages {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	printf := func(format string, args ...any) { fmt.Fprintf(&b, format, args...) }

	title := "Identity Reconciliation"
	if r.DryRun {
		title += " (dry run)"
	}
	printf("# %s\n\n", title)
	printf("Store: `%s`\n\n", r.Root)
	if r.BackupDir != "" {
		printf("Backup: `%s`\n\n", r.BackupDir)
	}
	if r.MalformedFound == 0 && r.Completed(StagePlan) {
		printf("No malformed user id found, nothing to do.\n")
		return b.String()
	}

	printf("## Summary\n\n")
	printf("| Item | Count |\n")
	printf("|:---|---:|\n")
	printf("| Malformed ids | %d |\n", r.MalformedFound)
	printf("| Accounts remapped | %d |\n", r.Remapped)
	printf("| Account conflicts | %d |\n", len(r.Conflicts))
	printf("| Positions moved | %d |\n", r.PositionsMoved)
	printf("| Position conflicts | %d |\n", len(r.PositionConflicts))
	printf("| Orders updated | %d |\n", r.OrdersUpdated)
	printf("\n")

	if len(r.Remaps) > 0 {
		printf("## Remaps\n\n")
		printf("| Malformed id | Canonical id |\n")
		printf("|:---|:---|\n")
		for _, rm := range r.Remaps {
			printf("| `%s` | `%s` |\n", rm.Old, rm.New)
		}
		printf("\n")
	}

	if conflicts := append(append([]Conflict{}, r.Conflicts...), r.PositionConflicts...); len(conflicts) > 0 {
		printf("## Conflicts\n\n")
		printf("| Store | Canonical id | Kept | Kept assets | Discarded id | Discarded assets |\n")
		printf("|:---|:---|:---|---:|:---|---:|\n")
		for _, c := range conflicts {
			printf("| %s | `%s` | %s | %s | `%s` | %s |\n", c.Store, c.New, c.Kept, dash(c.ExistingAssets), c.Old, dash(c.MigratingAssets))
		}
		printf("\n")
	}

	if len(r.Warnings) > 0 {
		printf("## Warnings\n\n")
		for _, w := range r.Warnings {
			printf("- %s\n", w)
		}
		printf("\n")
	}

	printf("## Stages\n\n")
	for _, s := range r.Stages {
		mark := "unchanged"
		if s.Changed {
			mark = "changed"
		}
		printf("- %s: %s\n", s.Name, mark)
	}
	return b.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
