package config

// MergeDefaults returns a copy of data with every key of defaults that data
// lacks filled in, plus the number of values injected. Neither argument is
// modified.
func MergeDefaults(defaults, data *Document) (*Document, int) {
	out := data.Clone()
	return out, FillDefaults(defaults, out)
}

// FillDefaults fills missing keys of data from defaults in place and returns
// the number of changes.
//
// A nested default mapping forces data[k] to be a mapping: creating it, or
// replacing a value of another type, counts as one change, and the walk then
// descends into it. A scalar default is copied only when data lacks the key
// or holds nil there. Nil defaults inject nothing so a second pass always
// reports zero.
func FillDefaults(defaults, data *Document) int {
	if data == nil {
		return 0
	}
	changed := 0
	defaults.Range(func(k string, v any) bool {
		if sub, ok := v.(*Document); ok {
			cur, isDoc := data.values[k].(*Document)
			if !isDoc || cur == nil {
				cur = NewDocument()
				data.Set(k, cur)
				changed++
			}
			changed += FillDefaults(sub, cur)
			return true
		}
		if v == nil {
			return true
		}
		if cur, ok := data.values[k]; !ok || cur == nil {
			data.Set(k, cloneValue(v))
			changed++
		}
		return true
	})
	return changed
}
