package library

// Stats summarizes the health of the token library for the settings UI.
type Stats struct {
	ZeroBindings     int `json:"zero_bindings"`
	DuplicateTokens  int `json:"duplicate_tokens"`
	DisabledGestures int `json:"disabled_gestures"`
}

// ComputeStats counts gestures with no enabled bindings, duplicate-token
// conflict groups among enabled gestures, and disabled gestures. Purely
// informational; nothing in the matching path consumes it.
func (l *Library) ComputeStats() Stats {
	var stats Stats
	for _, gesture := range l.Gestures {
		if !gesture.Enabled {
			stats.DisabledGestures++
		}
		enabledBindings := 0
		for _, binding := range gesture.Bindings {
			if binding.Enabled {
				enabledBindings++
			}
		}
		if enabledBindings == 0 {
			stats.ZeroBindings++
		}
	}

	for _, conflict := range l.FindConflicts() {
		if conflict.Kind == ConflictDuplicateTokens {
			stats.DuplicateTokens++
		}
	}
	return stats
}
