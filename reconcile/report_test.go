package reconcile

import (
	"strings"
	"testing"

	"github.com/etnz/papertrading"
	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// headings parses markdown and returns its headings as "## title" lines.
func headings(t *testing.T, md string) []string {
	t.Helper()
	content := []byte(md)
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var list []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var title strings.Builder
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if txt, ok := c.(*ast.Text); ok {
				title.Write(txt.Segment.Value(content))
			}
		}
		list = append(list, strings.Repeat("#", h.Level)+" "+title.String())
		return ast.WalkSkipChildren, nil
	})
	return list
}

func TestReport_Markdown(t *testing.T) {
	r := &Report{
		Root:           "/data",
		BackupDir:      "/data/backup_1",
		MalformedFound: 2,
		Remaps:         []Remap{{Old: "p:1:1_2", New: "p:1:2"}, {Old: "p:1:1_99", New: "p:1:99"}},
		Remapped:       1,
		Conflicts: []Conflict{{
			Store: papertrading.UsersFile, Old: "p:1:1_99", New: "p:1:99", Kept: KeptExisting,
			ExistingAssets: "1000", MigratingAssets: "500",
		}},
		OrdersUpdated: 3,
		Warnings:      []string{"something odd"},
		Stages:        []Stage{{StageLoad, false}, {StagePlan, true}, {StageBackup, true}, {StageUsers, true}},
	}

	md := r.Markdown()
	want := []string{
		"# Identity Reconciliation",
		"## Summary",
		"## Remaps",
		"## Conflicts",
		"## Warnings",
		"## Stages",
	}
	if diff := cmp.Diff(want, headings(t, md)); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	for _, s := range []string{
		"| Orders updated | 3 |",
		"| `p:1:1_2` | `p:1:2` |",
		"| users.json | `p:1:99` | existing | 1000 | `p:1:1_99` | 500 |",
		"- something odd",
		"- users.json: changed",
		"- load: unchanged",
		"Backup: `/data/backup_1`",
	} {
		if !strings.Contains(md, s) {
			t.Errorf("Markdown() does not contain %q:\n%s", s, md)
		}
	}
}

func TestReport_MarkdownNothingToDo(t *testing.T) {
	r := &Report{Root: "/data", DryRun: true, Stages: []Stage{{StageLoad, false}, {StagePlan, false}}}

	md := r.Markdown()
	if diff := cmp.Diff([]string{"# Identity Reconciliation (dry run)"}, headings(t, md)); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(md, "nothing to do") {
		t.Errorf("Markdown() = %q, want a nothing to do message", md)
	}
}

func TestReport_Completed(t *testing.T) {
	r := &Report{}
	r.done(StageLoad, false)
	if !r.Completed(StageLoad) {
		t.Error("load stage not completed")
	}
	if r.Completed(StageBackup) {
		t.Error("backup stage completed")
	}
}
