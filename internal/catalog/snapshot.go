package catalog

import (
	"fmt"
	"sort"
	"time"
)

// DefaultListLimit is used when ListOptions.Limit is not positive.
const DefaultListLimit = 30

// Snapshot is an immutable view of the catalog at one point in time.
// Actions returned from a snapshot are shared and must not be modified.
type Snapshot struct {
	actions     []*Action // sorted by id
	byID        map[string]*Action
	effective   map[string][]string
	childOf     map[string]struct{} // ids listed by any ruleset
	diagnostics []Diagnostic
	loadedAt    time.Time
}

// NewSnapshot indexes actions. Ids are unique in the result: on a collision the
// action whose Kind has the higher priority (agent, rule, mcp, pack) is kept, or
// the first one seen within the same Kind. Each dropped action adds a diagnostic.
func NewSnapshot(actions []*Action, diags ...Diagnostic) *Snapshot {
	s := &Snapshot{
		byID:        make(map[string]*Action, len(actions)),
		effective:   make(map[string][]string, len(actions)),
		childOf:     make(map[string]struct{}),
		diagnostics: append([]Diagnostic(nil), diags...),
		loadedAt:    time.Now(),
	}

	for _, a := range actions {
		if a == nil {
			continue
		}
		if prev, ok := s.byID[a.ID]; ok {
			kept, dropped := prev, a
			if kindPriority[a.Kind()] < kindPriority[prev.Kind()] {
				kept, dropped = a, prev
			}
			s.byID[a.ID] = kept
			s.diagnostics = append(s.diagnostics, Diagnostic{
				Source: string(dropped.Type),
				Err:    fmt.Errorf("id %q already used by a %s, dropping the %s", a.ID, kept.Type, dropped.Type),
			})
			continue
		}
		s.byID[a.ID] = a
	}

	s.actions = make([]*Action, 0, len(s.byID))
	for _, a := range s.byID {
		s.actions = append(s.actions, a)
	}
	sort.Slice(s.actions, func(i, j int) bool { return s.actions[i].ID < s.actions[j].ID })

	for _, a := range s.actions {
		if a.Type == TypeRuleset {
			for _, child := range a.Children {
				s.childOf[child] = struct{}{}
			}
		}
		s.effective[a.ID] = s.computeEffectiveTags(a)
	}
	return s
}

// computeEffectiveTags unions a ruleset's own tags with the declared tags of its
// direct children. Grandchildren are not visited.
func (s *Snapshot) computeEffectiveTags(a *Action) []string {
	set := make(map[string]struct{}, len(a.Tags))
	for _, t := range a.Tags {
		set[t] = struct{}{}
	}
	if a.Type == TypeRuleset {
		for _, id := range a.Children {
			child, ok := s.byID[id]
			if !ok {
				continue
			}
			for _, t := range child.Tags {
				set[t] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of actions.
func (s *Snapshot) Len() int { return len(s.actions) }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Diagnostics returns the problems recorded while loading.
func (s *Snapshot) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), s.diagnostics...)
}

// All returns every action in id order.
func (s *Snapshot) All() []*Action {
	return append([]*Action(nil), s.actions...)
}

// Get returns the action with the given id.
func (s *Snapshot) Get(id string) (*Action, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ByKind returns the actions of one category in id order.
func (s *Snapshot) ByKind(k Kind) []*Action {
	var out []*Action
	for _, a := range s.actions {
		if a.Kind() == k {
			out = append(out, a)
		}
	}
	return out
}

// EffectiveTags returns the sorted tag set used for filtering. For rulesets it
// includes the declared tags of direct children. Unknown ids return nil.
func (s *Snapshot) EffectiveTags(id string) []string {
	tags, ok := s.effective[id]
	if !ok {
		return nil
	}
	return append([]string(nil), tags...)
}

// Children resolves the children of id one by one. A missing child yields a
// ChildRef carrying ErrNotFound; the other children still resolve.
func (s *Snapshot) Children(id string) ([]ChildRef, error) {
	a, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	refs := make([]ChildRef, 0, len(a.Children))
	for _, cid := range a.Children {
		child, err := s.Get(cid)
		refs = append(refs, ChildRef{ID: cid, Action: child, Err: err})
	}
	return refs, nil
}

// IsChild reports whether id is listed in any ruleset's children.
func (s *Snapshot) IsChild(id string) bool {
	_, ok := s.childOf[id]
	return ok
}

// ListOptions filters and pages List results.
type ListOptions struct {
	Type   ActionType // empty matches every type
	Tags   []string   // any match against effective tags
	Limit  int
	Offset int
}

// List filters by type, then by tags, then returns the [offset, offset+limit)
// slice in id order. total counts matches before slicing.
func (s *Snapshot) List(opts ListOptions) (items []*Action, total int) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := max(opts.Offset, 0)

	var matched []*Action
	for _, a := range s.actions {
		if opts.Type != "" && a.Type != opts.Type {
			continue
		}
		if len(opts.Tags) > 0 && !s.hasAnyTag(a.ID, opts.Tags) {
			continue
		}
		matched = append(matched, a)
	}

	total = len(matched)
	if offset >= total {
		return []*Action{}, total
	}
	end := min(offset+limit, total)
	return matched[offset:end], total
}

func (s *Snapshot) hasAnyTag(id string, want []string) bool {
	for _, have := range s.effective[id] {
		for _, w := range want {
			if have == w {
				return true
			}
		}
	}
	return false
}

// TopLevelRules returns rules and rulesets that no ruleset lists as a child,
// rulesets first, then by title, then by id.
func (s *Snapshot) TopLevelRules() []*Action {
	var out []*Action
	for _, a := range s.actions {
		if a.Kind() != KindRule || s.IsChild(a.ID) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Type == TypeRuleset, out[j].Type == TypeRuleset
		if ri != rj {
			return ri
		}
		if ti, tj := out[i].Title(), out[j].Title(); ti != tj {
			return ti < tj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// TagCount is the number of actions carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts counts effective tags across the snapshot, sorted by tag.
func (s *Snapshot) TagCounts() []TagCount {
	counts := make(map[string]int)
	for _, a := range s.actions {
		for _, t := range s.effective[a.ID] {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Counts returns the number of actions per type.
func (s *Snapshot) Counts() map[ActionType]int {
	counts := make(map[ActionType]int)
	for _, a := range s.actions {
		counts[a.Type]++
	}
	return counts
}
