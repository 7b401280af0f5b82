package domain

import (
	"iter"
	"time"
)

// Starting progression for new skills.
const (
	StartingSkillLevel     = 1
	StartingSkillMaxPoints = 100
)

// Skill is a named progression axis. Skills form a tree; only leaves accrue points.
type Skill struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Level     int       `json:"level"`
	Points    int       `json:"points"`
	MaxPoints int       `json:"max_points"`
	Children  []*Skill  `json:"children,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSelectable reports whether the skill can be assigned to a task.
func (s *Skill) IsSelectable() bool {
	return s != nil && len(s.Children) == 0
}

func (s *Skill) Progress() Progress {
	return Progress{Level: s.Level, XP: s.Points, NextLevelXP: s.MaxPoints}
}

func (s *Skill) SetProgress(p Progress) {
	s.Level = p.Level
	s.Points = p.XP
	s.MaxPoints = p.NextLevelXP
}

// FindSkillRecursive searches the nested skill lists depth-first and returns the
// first node with the given id.
func FindSkillRecursive(skills []*Skill, id string) (*Skill, bool) {
	for _, s := range skills {
		if s == nil {
			continue
		}
		if s.ID == id {
			return s, true
		}
		if found, ok := FindSkillRecursive(s.Children, id); ok {
			return found, true
		}
	}
	return nil, false
}

// FlattenSelectableSkills yields every leaf skill in depth-first pre-order.
// The sequence is restartable and does not modify the tree.
func FlattenSelectableSkills(skills []*Skill) iter.Seq[*Skill] {
	return func(yield func(*Skill) bool) {
		walkLeaves(skills, yield)
	}
}

func walkLeaves(skills []*Skill, yield func(*Skill) bool) bool {
	for _, s := range skills {
		if s == nil {
			continue
		}
		if s.IsSelectable() {
			if !yield(s) {
				return false
			}
			continue
		}
		if !walkLeaves(s.Children, yield) {
			return false
		}
	}
	return true
}

// SkillTree holds the nested skills together with an id index.
type SkillTree struct {
	Roots []*Skill
	index map[string]*Skill
}

// BuildSkillTree links flat rows through their parent ids. Row order is kept
// for siblings. Rows whose parent is unknown become roots.
func BuildSkillTree(rows []Skill) *SkillTree {
	tree := &SkillTree{index: make(map[string]*Skill, len(rows))}
	nodes := make([]*Skill, 0, len(rows))
	for i := range rows {
		node := rows[i]
		node.Children = nil
		nodes = append(nodes, &node)
		tree.index[node.ID] = &node
	}
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := tree.index[*node.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree.Roots = append(tree.Roots, node)
	}
	return tree
}

// Find looks a skill up by id without walking the tree.
func (t *SkillTree) Find(id string) (*Skill, bool) {
	if t == nil {
		return nil, false
	}
	s, ok := t.index[id]
	return s, ok
}

// Selectable returns the leaf skills in tree order.
func (t *SkillTree) Selectable() []*Skill {
	if t == nil {
		return nil
	}
	var out []*Skill
	for s := range FlattenSelectableSkills(t.Roots) {
		out = append(out, s)
	}
	return out
}

// Len returns the number of indexed skills.
func (t *SkillTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.index)
}
