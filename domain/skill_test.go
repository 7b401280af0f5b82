package domain

import (
	"slices"
	"testing"
)

func ptr[T any](v T) *T { return &v }

// fitness(strength(deadlift), running), reading
func sampleRows() []Skill {
	return []Skill{
		{ID: "fitness", Name: "Fitness"},
		{ID: "strength", Name: "Strength", ParentID: ptr("fitness")},
		{ID: "deadlift", Name: "Deadlift", ParentID: ptr("strength")},
		{ID: "running", Name: "Running", ParentID: ptr("fitness")},
		{ID: "reading", Name: "Reading"},
	}
}

func ids(skills []*Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.ID)
	}
	return out
}

func TestBuildSkillTree(t *testing.T) {
	tree := BuildSkillTree(sampleRows())

	if got := ids(tree.Roots); !slices.Equal(got, []string{"fitness", "reading"}) {
		t.Fatalf("roots = %v", got)
	}
	if tree.Len() != 5 {
		t.Fatalf("len = %d", tree.Len())
	}
	fitness, ok := tree.Find("fitness")
	if !ok || len(fitness.Children) != 2 {
		t.Fatalf("fitness children = %v", fitness)
	}
	if got := ids(tree.Selectable()); !slices.Equal(got, []string{"deadlift", "running", "reading"}) {
		t.Fatalf("selectable = %v", got)
	}
}

func TestBuildSkillTreeOrphan(t *testing.T) {
	rows := []Skill{{ID: "a", ParentID: ptr("missing")}, {ID: "b", ParentID: ptr("b")}}
	tree := BuildSkillTree(rows)
	if got := ids(tree.Roots); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("roots = %v", got)
	}
}

func TestFindSkillRecursive(t *testing.T) {
	roots := BuildSkillTree(sampleRows()).Roots

	tests := []struct {
		id   string
		want bool
	}{
		{"fitness", true},
		{"deadlift", true},
		{"reading", true},
		{"swimming", false},
		{"", false},
	}
	for _, tt := range tests {
		s, ok := FindSkillRecursive(roots, tt.id)
		if ok != tt.want {
			t.Fatalf("FindSkillRecursive(%q) ok = %v, want %v", tt.id, ok, tt.want)
		}
		if ok && s.ID != tt.id {
			t.Fatalf("FindSkillRecursive(%q) returned %q", tt.id, s.ID)
		}
	}

	if _, ok := FindSkillRecursive(nil, "fitness"); ok {
		t.Fatal("empty forest must not match")
	}
}

func TestFlattenSelectableSkills(t *testing.T) {
	roots := BuildSkillTree(sampleRows()).Roots
	seq := FlattenSelectableSkills(roots)

	var first, second []string
	for s := range seq {
		first = append(first, s.ID)
	}
	for s := range seq {
		second = append(second, s.ID)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("sequence is not restartable: %v vs %v", first, second)
	}

	var stopped []string
	for s := range seq {
		stopped = append(stopped, s.ID)
		if len(stopped) == 1 {
			break
		}
	}
	if !slices.Equal(stopped, []string{"deadlift"}) {
		t.Fatalf("early stop = %v", stopped)
	}

	for s := range seq {
		if !s.IsSelectable() {
			t.Fatalf("%s has children", s.ID)
		}
	}
}
