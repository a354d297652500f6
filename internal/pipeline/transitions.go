package pipeline

// validTransitions contains the permitted forward transitions; StageEnd is always allowed.
var validTransitions = map[Stage][]Stage{
	StageStart: {
		StageProvisionSchema,
	},
	StageProvisionSchema: {
		StagePromoteAdmin,
	},
	StagePromoteAdmin: {
		StageVerify,
	},
}

// IsTransitionAllowed reports whether moving from one stage to another is valid.
func IsTransitionAllowed(from, to Stage) bool {
	if to == StageEnd {
		return from != StageEnd
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, stage := range allowed {
		if stage == to {
			return true
		}
	}

	return false
}
