package events

// Reconcile filters the stake history down to positions that are still open.
//
// A locked position is closed by an Unstake event carrying the same account
// and stake id; a flexible position by a RequestUnstakeFlexible event. The
// two id spaces are independent, so matching happens on the namespaced key.
// Input order is preserved: with a descending-sorted set in, the result is
// newest-first too.
func Reconcile(set *Set) []StakeRecord {
	closed := make(map[string]struct{}, len(set.Unstakes)+len(set.FlexibleUnstakes))
	for _, u := range set.Unstakes {
		closed[u.Key()] = struct{}{}
	}
	for _, u := range set.FlexibleUnstakes {
		closed[u.Key()] = struct{}{}
	}

	var active []StakeRecord
	for _, s := range set.Stakes {
		if _, ok := closed[s.Key()]; ok {
			continue
		}
		active = append(active, s)
	}
	return active
}

// ActiveLocked returns the open locked positions only, the input set for
// reward estimation. Flexible positions accrue by exchange-rate drift and
// have no fixed APR, so the estimator never sees them.
func ActiveLocked(set *Set) []StakeRecord {
	var locked []StakeRecord
	for _, s := range Reconcile(set) {
		if s.Class == ClassFlexible {
			continue
		}
		locked = append(locked, s)
	}
	return locked
}
