package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrules/gitrules/internal/ai"
	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/logging"
)

func init() {
	logging.Disable()
}

func testSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.Load(fstest.MapFS{
		catalog.AgentsFile: {Data: []byte("agents:\n  - slug: helper\n    display_name: Helper\n    tags: [assist]\n")},
		catalog.RulesFile:  {Data: []byte("a:\n  display_name: Rule A\n  tags: [go]\nb:\n  content: b\nc:\n  type: ruleset\n  children: [a, b]\n")},
		catalog.MCPsFile:   {Data: []byte("mcps:\n  - slug: hub\n    config: {command: hub}\n")},
		catalog.PacksFile:  {Data: []byte("packs:\n  - id: bundle\n    actions: [a]\n")},
	})
	require.NoError(t, err)
	return snap
}

func TestValidateCapsDedupesAndWhitelists(t *testing.T) {
	cat := BuildCatalog(testSnapshot(t))

	sel, rationales := Validate(`{"rules":["a","ghost","a","b","c","d"],"agents":[],"mcps":[]}`, cat)
	assert.Equal(t, []string{"a", "b", "c"}, sel.Rules)
	assert.Equal(t, []string{}, sel.Agents)
	assert.Equal(t, []string{}, sel.MCPs)
	assert.Nil(t, rationales)
}

func TestValidateCategoriesAreIndependent(t *testing.T) {
	cat := BuildCatalog(testSnapshot(t))

	// helper is an agent, not a rule; bundle is a pack and never selectable.
	sel, _ := Validate(`{"rules":["helper","bundle",7,null,"a"],"agents":["helper","a"],"mcps":["hub"]}`, cat)
	want := Selection{Rules: []string{"a"}, Agents: []string{"helper"}, MCPs: []string{"hub"}}
	if diff := cmp.Diff(want, sel); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateUnparseable(t *testing.T) {
	cat := BuildCatalog(testSnapshot(t))

	for _, raw := range []string{"", "sorry, no json here", "{broken", `["a"]`, "null", `{"rules": "a"}`} {
		sel, rationales := Validate(raw, cat)
		assert.Equal(t, EmptySelection(), sel, raw)
		assert.Nil(t, rationales, raw)
	}
}

func TestValidateRationales(t *testing.T) {
	cat := BuildCatalog(testSnapshot(t))
	long := strings.Repeat("é", 250)

	raw := `{"rules":["a"],"agents":["helper"],"mcps":[],
		"rationales":{
			"rules:a":"` + long + `",
			"agents:helper":{"why":"<fast>","n":1},
			"rules:ghost":"smuggled",
			"mcps:hub":"not selected",
			"packs:bundle":"unknown category",
			"nocolon":"x"
		}}`
	sel, rationales := Validate(raw, cat)
	assert.Equal(t, []string{"a"}, sel.Rules)
	require.NotNil(t, rationales)
	assert.Len(t, rationales, 2)
	assert.Equal(t, strings.Repeat("é", MaxRationaleLen), rationales["rules:a"])
	assert.Equal(t, `{"n":1,"why":"<fast>"}`, rationales["agents:helper"])

	// A rationales object with nothing usable is empty, not absent.
	_, rationales = Validate(`{"rules":[],"rationales":{"rules:a":"x"}}`, cat)
	assert.NotNil(t, rationales)
	assert.Empty(t, rationales)

	_, rationales = Validate(`{"rules":["a"],"rationales":["rules:a"]}`, cat)
	assert.Nil(t, rationales)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		parsed bool
		rules  any
	}{
		{"strict", `{"rules":["a"]}`, true, []any{"a"}},
		{"fenced", "Here you go:\n```json\n{\"rules\":[\"a\"]}\n```", true, []any{"a"}},
		{"nested rationales", `Sure! {"rules":["a"],"rationales":{"rules:a":"because {curly}"}} done`, true, []any{"a"}},
		{"brace in string", `x {"rules":["}"]} y`, true, []any{"}"}},
		{"escaped quote", `x {"rules":["a\"}"]} y`, true, []any{"a\"}"}},
		{"trailing garbage strict", `{"rules":["a"]} and more`, true, []any{"a"}},
		{"unbalanced", `{"rules":["a"]`, false, nil},
		{"no brace", "nothing", false, nil},
		{"first block invalid", `{not json} {"rules":["a"]}`, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := Extract(tt.raw)
			assert.Equal(t, tt.parsed, ext.Parsed)
			if tt.parsed {
				assert.Equal(t, tt.rules, ext.Object["rules"])
			} else {
				assert.Nil(t, ext.Object)
			}
		})
	}
}

func TestBuildCatalog(t *testing.T) {
	cat := BuildCatalog(testSnapshot(t))

	assert.Equal(t, []Entry{{Slug: "helper", DisplayName: "Helper", Tags: []string{"assist"}}}, cat.Agents)
	require.Len(t, cat.Rules, 3)
	assert.Equal(t, "Rule A", cat.Rules[0].DisplayName)
	assert.Equal(t, catalog.TypeRule, cat.Rules[0].Type)
	assert.Equal(t, "b", cat.Rules[1].DisplayName)
	assert.Equal(t, catalog.TypeRuleset, cat.Rules[2].Type)
	assert.Equal(t, []string{}, cat.MCPs[0].Tags)

	// sha1("a,b,c,helper,hub")[:8]
	assert.Equal(t, "277e5338", cat.Version())

	want := strings.Join([]string{
		"- Agents:",
		"  helper - Helper - [assist]",
		"- Rules:",
		"  a - Rule A - rule - [go]",
		"  b - b - rule",
		"  c - c - ruleset",
		"- MCPs:",
		"  hub - hub",
	}, "\n")
	assert.Equal(t, want, cat.Format())
}

type fakeCompleter struct {
	req *ai.CompletionRequest
	out string
	err error
}

func (f *fakeCompleter) ID() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, req *ai.CompletionRequest) (string, error) {
	f.req = req
	return f.out, f.err
}

type fakeIngester struct {
	url string
	out string
	err error
}

func (f *fakeIngester) Ingest(ctx context.Context, repoURL string) (string, error) {
	f.url = repoURL
	return f.out, f.err
}

type staticSource struct{ snap *catalog.Snapshot }

func (s staticSource) Snapshot() *catalog.Snapshot { return s.snap }

func TestRecommendWithContext(t *testing.T) {
	completer := &fakeCompleter{out: `{"rules":["c"],"agents":["helper"],"mcps":["hub"],"rationales":{"rules:c":"go code"}}`}
	ingester := &fakeIngester{}
	r := NewRecommender(staticSource{testSnapshot(t)}, completer, ingester, Options{Model: "m", Temperature: 0.2, MaxTokens: 1000})

	res, err := r.Recommend(context.Background(), Request{Context: "package main", UserPrompt: "focus on tests"})
	require.NoError(t, err)

	assert.Empty(t, ingester.url, "context given, no ingest")
	assert.Equal(t, []string{"c"}, res.Preselect.Rules)
	assert.Equal(t, Rationales{"rules:c": "go code"}, res.Rationales)
	assert.Equal(t, len("package main"), res.ContextSize)
	assert.Equal(t, "277e5338", res.CatalogVersion)
	assert.Equal(t, completer.out, res.Raw)

	require.NotNil(t, completer.req)
	assert.Contains(t, completer.req.System, "  hub - hub")
	assert.True(t, strings.HasSuffix(completer.req.User, "package main\n\nUser focus: focus on tests"))
	assert.Equal(t, "m", completer.req.Model)
	assert.Equal(t, 1000, completer.req.MaxTokens)
}

func TestRecommendIngestsURL(t *testing.T) {
	completer := &fakeCompleter{out: "not json"}
	ingester := &fakeIngester{out: "repo digest"}
	r := NewRecommender(staticSource{testSnapshot(t)}, completer, ingester, Options{})

	res, err := r.Recommend(context.Background(), Request{RepoURL: "https://github.com/acme/app"})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/app", ingester.url)
	assert.Equal(t, EmptySelection(), res.Preselect)
	assert.Equal(t, len("repo digest"), res.ContextSize)
	assert.NotContains(t, completer.req.User, "User focus")
}

func TestRecommendErrors(t *testing.T) {
	src := staticSource{testSnapshot(t)}

	_, err := NewRecommender(src, &fakeCompleter{}, &fakeIngester{}, Options{}).Recommend(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoContext)

	_, err = NewRecommender(src, &fakeCompleter{}, nil, Options{}).Recommend(context.Background(), Request{RepoURL: "u"})
	assert.ErrorIs(t, err, ErrNoIngester)

	ingestErr := errors.New("gitingest down")
	_, err = NewRecommender(src, &fakeCompleter{}, &fakeIngester{err: ingestErr}, Options{}).Recommend(context.Background(), Request{RepoURL: "u"})
	assert.ErrorIs(t, err, ingestErr)

	_, err = NewRecommender(src, nil, nil, Options{}).Recommend(context.Background(), Request{Context: "ctx"})
	assert.ErrorIs(t, err, ai.ErrNoAPIKey)

	_, err = NewRecommender(src, &fakeCompleter{err: ai.ErrCircuitOpen}, nil, Options{}).Recommend(context.Background(), Request{Context: "ctx"})
	assert.ErrorIs(t, err, ai.ErrCircuitOpen)
}
