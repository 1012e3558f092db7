package reconcile

import (
	"strings"
	"testing"

	"github.com/etnz/papertrading"
	"github.com/google/go-cmp/cmp"
)

func TestNewPlan(t *testing.T) {
	accounts := papertrading.Collection{
		"p:1:1_99": []byte(`{"user_id":"p:1:1_99","total_assets":500}`),
		"p:1:99":   []byte(`{"user_id":"p:1:99","total_assets":1000}`),
		"p:2:2_7":  []byte(`{"user_id":"p:2:2_7","total_assets":70}`),
		"p:3:33":   []byte(`{"user_id":"p:3:33"}`),
		"legacy":   []byte(`{"user_id":"legacy"}`),
	}
	p := NewPlan(accounts)

	wantRemaps := []Remap{
		{Old: "p:1:1_99", New: "p:1:99"},
		{Old: "p:2:2_7", New: "p:2:7"},
	}
	if diff := cmp.Diff(wantRemaps, p.Remaps()); diff != "" {
		t.Errorf("Remaps() mismatch (-want +got):\n%s", diff)
	}

	wantConflicts := []Conflict{{
		Store:           papertrading.UsersFile,
		Old:             "p:1:1_99",
		New:             "p:1:99",
		Kept:            KeptExisting,
		ExistingAssets:  "1000",
		MigratingAssets: "500",
	}}
	if diff := cmp.Diff(wantConflicts, p.Conflicts()); diff != "" {
		t.Errorf("Conflicts() mismatch (-want +got):\n%s", diff)
	}

	if n, ok := p.Lookup("p:2:2_7"); !ok || n != "p:2:7" {
		t.Errorf("Lookup(p:2:2_7) = %q, %v", n, ok)
	}
	if _, ok := p.Lookup("p:3:33"); ok {
		t.Error("canonical id should not be in the plan")
	}
	if p.Empty() || p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
}

func TestNewPlan_Empty(t *testing.T) {
	p := NewPlan(papertrading.Collection{
		"p:1:99": []byte(`{}`),
		"alice":  []byte(`{}`),
	})
	if !p.Empty() {
		t.Errorf("plan is not empty: %v", p.Remaps())
	}
	if len(p.Conflicts()) != 0 || len(p.Warnings()) != 0 {
		t.Errorf("unexpected conflicts or warnings: %v %v", p.Conflicts(), p.Warnings())
	}
}

// Two malformed ids with the same canonical form: the first one wins.
func TestNewPlan_MalformedCollision(t *testing.T) {
	accounts := papertrading.Collection{
		"p:1:1_1_99": []byte(`{"total_assets":2}`),
		"p:1:1_99":   []byte(`{"total_assets":1}`),
	}
	p := NewPlan(accounts)

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	conflicts := p.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("Conflicts() = %v, want one conflict", conflicts)
	}
	// "p:1:1_1_99" sorts first and migrates.
	want := Conflict{
		Store:           papertrading.UsersFile,
		Old:             "p:1:1_99",
		New:             "p:1:99",
		Kept:            KeptMigrating,
		ExistingAssets:  "2",
		MigratingAssets: "1",
	}
	if diff := cmp.Diff(want, conflicts[0]); diff != "" {
		t.Errorf("conflict mismatch (-want +got):\n%s", diff)
	}
	if w := p.Warnings(); len(w) != 1 || !strings.Contains(w[0], `keeping "p:1:1_1_99" as it sorts first`) {
		t.Errorf("Warnings() = %v, want one warning naming the sorted order", w)
	}
}
