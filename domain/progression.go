package domain

// Progress is the leveling state shared by users and skills.
type Progress struct {
	Level       int `json:"level"`
	XP          int `json:"xp"`
	NextLevelXP int `json:"next_level_xp"`
}

// LeveledUp reports whether next is at a higher level than p.
func (p Progress) LeveledUp(next Progress) bool {
	return next.Level > p.Level
}

// ApplyXPDelta adds delta to the current XP and resolves at most one level-up.
//
// A positive delta that reaches the threshold advances one level and doubles the
// threshold; XP is not reduced by the threshold. A negative delta never lowers
// the level or the threshold, even when XP becomes negative.
func ApplyXPDelta(p Progress, delta int) Progress {
	next := Progress{
		Level:       p.Level,
		XP:          p.XP + delta,
		NextLevelXP: p.NextLevelXP,
	}
	if delta > 0 && next.XP >= p.NextLevelXP {
		next.Level++
		next.NextLevelXP = p.NextLevelXP * 2
	}
	return next
}
