package detect

// Diff returns the keywords in current that are new or whose count grew
// since previous, in current's order. A keyword whose count fell or held
// steady is never returned.
func Diff(previous, current Counts) []string {
	notable := make([]string, 0, current.Len())
	for _, kw := range current.keys {
		n := current.values[kw]
		if old, ok := previous.Get(kw); !ok || n > old {
			notable = append(notable, kw)
		}
	}
	return notable
}
