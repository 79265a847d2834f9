package pathmachine

// Parameters tunes path disambiguation. The defaults are the values
// the matching heuristics were calibrated against; change them only
// with care.
type Parameters struct {
	// AcceptBestRelative commits to the best path when its
	// probability exceeds the runner-up's by this factor.
	AcceptBestRelative float64
	// AcceptBestAbsolute commits to the best path when its
	// probability exceeds the runner-up's by this margin.
	AcceptBestAbsolute float64
	// NewRoomPenalty divides the probability of paths that run
	// through freshly created temporary rooms.
	NewRoomPenalty float64
	// CorrectPositionBonus rewards candidates that sit exactly where
	// the move said they should be.
	CorrectPositionBonus float64
	// MultipleConnectionsPenalty punishes candidates whose exits
	// already lead somewhere else.
	MultipleConnectionsPenalty float64
	// MaxPaths bounds the path tree; beyond it low-probability paths
	// are pruned aggressively.
	MaxPaths int
	// MatchingTolerance is the percent-of-length budget handed to the
	// comparison engine.
	MatchingTolerance int
	// MaxSkipped is how many unparsed rooms a sync attempt may cross.
	MaxSkipped int
}

// DefaultParameters returns the calibrated defaults.
func DefaultParameters() Parameters {
	return Parameters{
		AcceptBestRelative:         25,
		AcceptBestAbsolute:         6,
		NewRoomPenalty:             5,
		CorrectPositionBonus:       5,
		MultipleConnectionsPenalty: 2.0,
		MaxPaths:                   1000,
		MatchingTolerance:          8,
		MaxSkipped:                 1,
	}
}
