package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gitrules/gitrules/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Disable()
	goleak.VerifyTestMain(m)
}

const agentsYAML = `
agents:
  - slug: reviewer
    display_name: Reviewer
    tags: [review]
    content: "review things"
  - slug: tester
    content: "write tests"
`

const rulesYAML = `
go-errors:
  display_name: Go errors
  author: alice
  tags: [go, errors]
  content: "wrap errors"
go-tests:
  tags: [testing]
  content: "table tests"
nested:
  tags: [deep]
  content: "deep rule"
inner-set:
  type: ruleset
  tags: [inner]
  children: [nested]
go-set:
  type: ruleset
  display_name: Go set
  tags: [go]
  children: [go-errors, go-tests, inner-set, ghost]
standalone:
  display_name: Alpha
  content: "top level"
weird:
  type: checklist
  content: "odd type"
`

const mcpsYAML = `
mcps:
  - slug: github
    tags: [git]
    config:
      command: npx
      env:
        TOKEN: ${GITHUB_TOKEN}
  - slug: bare
`

const packsYAML = `
packs:
  - id: starter
    display_name: Starter
    actions: [go-set, reviewer, github]
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		AgentsFile: {Data: []byte(agentsYAML)},
		RulesFile:  {Data: []byte(rulesYAML)},
		MCPsFile:   {Data: []byte(mcpsYAML)},
		PacksFile:  {Data: []byte(packsYAML)},
	}
}

func mustLoad(t *testing.T, fsys fstest.MapFS) *Snapshot {
	t.Helper()
	snap, err := Load(fsys)
	require.NoError(t, err)
	return snap
}

func TestLoadAllSources(t *testing.T) {
	snap := mustLoad(t, testFS())

	counts := snap.Counts()
	assert.Equal(t, 2, counts[TypeAgent])
	assert.Equal(t, 5, counts[TypeRule])
	assert.Equal(t, 2, counts[TypeRuleset])
	assert.Equal(t, 2, counts[TypeMCP])
	assert.Equal(t, 1, counts[TypePack])

	reviewer, err := snap.Get("reviewer")
	require.NoError(t, err)
	assert.Equal(t, "reviewer.md", reviewer.Filename)
	assert.Equal(t, "Reviewer", reviewer.Title())

	tester, err := snap.Get("tester")
	require.NoError(t, err)
	assert.Equal(t, "tester", tester.Title())

	rule, err := snap.Get("go-errors")
	require.NoError(t, err)
	assert.Equal(t, "go-errors.yaml", rule.Filename)
	assert.Equal(t, "alice", rule.Author)

	pack, err := snap.Get("starter")
	require.NoError(t, err)
	assert.Equal(t, "starter", pack.Name)
	assert.Equal(t, []string{"go-set", "reviewer", "github"}, pack.Children)
}

func TestLoadUnknownRuleTypeBecomesRule(t *testing.T) {
	snap := mustLoad(t, testFS())

	weird, err := snap.Get("weird")
	require.NoError(t, err)
	assert.Equal(t, TypeRule, weird.Type)
	require.Len(t, snap.Diagnostics(), 1)
	assert.Contains(t, snap.Diagnostics()[0].Error(), "checklist")
}

func TestLoadMCPWithoutTagsOrConfig(t *testing.T) {
	snap := mustLoad(t, testFS())

	bare, err := snap.Get("bare")
	require.NoError(t, err)
	assert.Empty(t, bare.Tags)
	assert.NotNil(t, bare.Config)
	assert.Empty(t, bare.Config)

	gh, err := snap.Get("github")
	require.NoError(t, err)
	env, ok := gh.Config["env"].(map[string]any)
	require.True(t, ok, "nested config should be map[string]any")
	assert.Equal(t, "${GITHUB_TOKEN}", env["TOKEN"])
}

func TestLoadMissingSources(t *testing.T) {
	snap := mustLoad(t, fstest.MapFS{})
	assert.Equal(t, 0, snap.Len())
	assert.Empty(t, snap.Diagnostics())

	snap = mustLoad(t, fstest.MapFS{RulesFile: {Data: []byte(rulesYAML)}})
	assert.Equal(t, 7, snap.Len())
}

func TestLoadMalformedSourceEmptiesOnlyItsCategory(t *testing.T) {
	fsys := testFS()
	fsys[AgentsFile] = &fstest.MapFile{Data: []byte("agents: [unterminated")}

	snap := mustLoad(t, fsys)
	assert.Empty(t, snap.ByKind(KindAgent))
	assert.NotEmpty(t, snap.ByKind(KindRule))
	assert.NotEmpty(t, snap.ByKind(KindMCP))

	var found bool
	for _, d := range snap.Diagnostics() {
		if d.Source == AgentsFile {
			found = true
		}
	}
	assert.True(t, found, "expected a diagnostic for %s", AgentsFile)
}

func TestLoadNilFS(t *testing.T) {
	_, err := Load(nil)
	assert.Error(t, err)
}

func TestEntriesWithoutIDAreSkipped(t *testing.T) {
	snap := mustLoad(t, fstest.MapFS{
		AgentsFile: {Data: []byte("agents:\n  - display_name: Nameless\n  - slug: ok\n")},
		PacksFile:  {Data: []byte("packs:\n  - name: no-id\n")},
	})
	assert.Equal(t, 1, snap.Len())
	assert.Len(t, snap.Diagnostics(), 2)
}

func TestEffectiveTags(t *testing.T) {
	snap := mustLoad(t, testFS())

	set, err := snap.Get("go-set")
	require.NoError(t, err)
	for _, tag := range set.Tags {
		assert.Contains(t, snap.EffectiveTags("go-set"), tag)
	}

	// go, plus direct children go-errors, go-tests and inner-set; nested is a grandchild.
	assert.Equal(t, []string{"errors", "go", "inner", "testing"}, snap.EffectiveTags("go-set"))
	assert.NotContains(t, snap.EffectiveTags("go-set"), "deep")

	assert.Equal(t, []string{"errors", "go"}, snap.EffectiveTags("go-errors"))
	assert.Nil(t, snap.EffectiveTags("nope"))
}

func TestListFiltersAndPages(t *testing.T) {
	snap := mustLoad(t, testFS())

	items, total := snap.List(ListOptions{Type: TypeRule, Tags: []string{"go", "testing"}})
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "go-errors", items[0].ID)
	assert.Equal(t, "go-tests", items[1].ID)

	// Rulesets match on child tags.
	items, total = snap.List(ListOptions{Type: TypeRuleset, Tags: []string{"testing"}})
	assert.Equal(t, 1, total)
	assert.Equal(t, "go-set", items[0].ID)

	all, total := snap.List(ListOptions{})
	assert.Equal(t, snap.Len(), total)
	assert.Len(t, all, snap.Len())

	page, total := snap.List(ListOptions{Limit: 3, Offset: 2})
	assert.Equal(t, snap.Len(), total)
	require.Len(t, page, 3)
	assert.Equal(t, all[2].ID, page[0].ID)

	empty, total := snap.List(ListOptions{Offset: 100})
	assert.Equal(t, snap.Len(), total)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTopLevelRules(t *testing.T) {
	snap := mustLoad(t, testFS())

	var ids []string
	for _, a := range snap.TopLevelRules() {
		ids = append(ids, a.ID)
	}
	// inner-set, nested, go-errors and go-tests are children of some ruleset.
	assert.Equal(t, []string{"go-set", "standalone", "weird"}, ids)
}

func TestChildrenResolveIndividually(t *testing.T) {
	snap := mustLoad(t, testFS())

	refs, err := snap.Children("go-set")
	require.NoError(t, err)
	require.Len(t, refs, 4)

	for _, ref := range refs[:3] {
		assert.NoError(t, ref.Err)
		assert.NotNil(t, ref.Action)
	}
	assert.Equal(t, "ghost", refs[3].ID)
	assert.True(t, errors.Is(refs[3].Err, ErrNotFound))

	_, err = snap.Children("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIDCollisionPolicy(t *testing.T) {
	snap := mustLoad(t, fstest.MapFS{
		AgentsFile: {Data: []byte("agents:\n  - slug: shared\n    content: agent body\n")},
		RulesFile:  {Data: []byte("shared:\n  content: rule body\nrule-only:\n  content: x\n")},
		MCPsFile:   {Data: []byte("mcps:\n  - slug: rule-only\n  - slug: twice\n  - slug: twice\n    display_name: Second\n")},
	})

	shared, err := snap.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, TypeAgent, shared.Type)

	ro, err := snap.Get("rule-only")
	require.NoError(t, err)
	assert.Equal(t, TypeRule, ro.Type)

	twice, err := snap.Get("twice")
	require.NoError(t, err)
	assert.Empty(t, twice.DisplayName, "first entry within a kind wins")

	assert.Equal(t, 3, snap.Len())
	assert.Len(t, snap.Diagnostics(), 3)
}

func TestTagCounts(t *testing.T) {
	snap := mustLoad(t, testFS())

	counts := map[string]int{}
	for _, tc := range snap.TagCounts() {
		counts[tc.Tag] = tc.Count
	}
	// go-errors and go-set.
	assert.Equal(t, 2, counts["go"])
	// inner-set, go-set.
	assert.Equal(t, 2, counts["inner"])
}

func TestStoreReloadSwapsAndKeepsOnError(t *testing.T) {
	fsys := testFS()
	store, err := NewStore(fsys)
	require.NoError(t, err)

	first := store.Snapshot()
	require.NotNil(t, first)

	var notified *Snapshot
	store.OnReload(func(s *Snapshot) { notified = s })

	fsys[AgentsFile] = &fstest.MapFile{Data: []byte("agents:\n  - slug: only\n")}
	second, err := store.Reload()
	require.NoError(t, err)
	assert.Same(t, second, store.Snapshot())
	assert.Same(t, second, notified)
	assert.Len(t, second.ByKind(KindAgent), 1)

	// The first snapshot is unchanged.
	assert.Len(t, first.ByKind(KindAgent), 2)
}

func TestStoreWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, AgentsFile), []byte(agentsYAML), 0644))

	store, err := OpenDir(dir)
	require.NoError(t, err)
	defer store.Stop()

	reloaded := make(chan *Snapshot, 4)
	store.OnReload(func(s *Snapshot) { reloaded <- s })

	require.NoError(t, store.Watch(t.Context(), dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, RulesFile), []byte(rulesYAML), 0644))

	select {
	case snap := <-reloaded:
		assert.NotEmpty(t, snap.ByKind(KindRule))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestStoreSchedule(t *testing.T) {
	store, err := NewStore(testFS())
	require.NoError(t, err)

	assert.Error(t, store.Schedule("not a schedule"))
	require.NoError(t, store.Schedule("@every 1h"))
	store.Stop()

	// Stop is idempotent.
	store.Stop()
}
