// Package membership holds the in-memory relationship algorithms shared by
// likes, follows and the messaging inbox.
package membership

// Toggle inverts the presence of actor in entries.
//
// Entries are matched by key, which must return the entry's identity. When
// actor is present its entry is removed and alreadyPresent is true;
// otherwise newEntry() is appended and alreadyPresent is false. The input
// slice is never modified.
func Toggle[E any, K comparable](entries []E, actor K, key func(E) K, newEntry func() E) (out []E, alreadyPresent bool) {
	out = make([]E, 0, len(entries)+1)
	for _, e := range entries {
		if key(e) == actor {
			alreadyPresent = true
			continue
		}
		out = append(out, e)
	}
	if !alreadyPresent {
		out = append(out, newEntry())
	}
	return out, alreadyPresent
}

// Contains reports whether any entry has the given identity.
func Contains[E any, K comparable](entries []E, actor K, key func(E) K) bool {
	for _, e := range entries {
		if key(e) == actor {
			return true
		}
	}
	return false
}
