package profile

import "math"

// SelectProfile picks the active profile for the given window: among enabled
// profiles whose rules all match, the one with the highest priority wins,
// ties broken by list order (earliest wins). Returns nil when nothing
// matches; the caller falls back to a default profile or no-match action.
func SelectProfile(db *DB, window WindowInfo) *Profile {
	var best *Profile
	bestIdx := -1
	for idx := range db.Profiles {
		profile := &db.Profiles[idx]
		if !profile.Matches(window) {
			continue
		}
		if best == nil || profile.Priority > best.Priority ||
			(profile.Priority == best.Priority && idx < bestIdx) {
			best = profile
			bestIdx = idx
		}
	}
	return best
}

// BindingMatch is the outcome of binding resolution: the chosen binding, its
// DTW distance, and its index in the profile's binding list.
type BindingMatch struct {
	Binding  *Binding
	Distance float64
	Index    int
}

// SelectBinding picks the best binding within a profile given the DTW
// distances computed for this stroke. Among enabled bindings whose gesture
// has a recorded finite distance within maxDistance, the minimum distance
// wins; equal distances prefer higher priority, then the earlier list index.
// Returns nil when no binding is confident enough.
//
// This resolver is pure and side-effect-free; it is re-run per completed
// stroke.
func SelectBinding(profile *Profile, gestureDistances map[string]float64, maxDistance float64) *BindingMatch {
	var best *BindingMatch
	for index := range profile.Bindings {
		binding := &profile.Bindings[index]
		if !binding.Enabled {
			continue
		}
		distance, ok := gestureDistances[binding.GestureID]
		if !ok {
			continue
		}
		if math.IsNaN(distance) || math.IsInf(distance, 0) || distance > maxDistance {
			continue
		}

		if best == nil ||
			distance < best.Distance ||
			(distance == best.Distance &&
				(binding.Priority > best.Binding.Priority ||
					(binding.Priority == best.Binding.Priority && index < best.Index))) {
			best = &BindingMatch{Binding: binding, Distance: distance, Index: index}
		}
	}
	return best
}
