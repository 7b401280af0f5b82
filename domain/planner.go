package domain

import "time"

// Area is a top-level grouping of projects.
type Area struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project groups tasks inside exactly one area.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AreaID    string    `json:"area_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AreaPatch struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Icon *string `json:"icon,omitempty" validate:"omitempty,max=64"`
}

func (p AreaPatch) Apply(a *Area) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Icon != nil {
		a.Icon = *p.Icon
	}
}

type ProjectPatch struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	AreaID *string `json:"area_id,omitempty" validate:"omitempty,min=1,max=64"`
}

func (p ProjectPatch) Apply(pr *Project) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.AreaID != nil {
		pr.AreaID = *p.AreaID
	}
}
