package groups

import (
	"strconv"
	"strings"
)

// hashTextLimit caps how much fragment text feeds the hash. Enough to tell
// fragments apart without making ids sensitive to edits far into a block.
const hashTextLimit = 50

// StableID derives a collision-resistant identifier for a content fragment.
//
// If the fragment already carries an id from a previous scan, that id is
// registered in used and returned unchanged, so rescans never re-key an
// unmodified element. Otherwise the id is tag-<hash6> with a numeric suffix
// appended until it is free in used.
//
// The function is pure: all state lives in the caller-supplied used set.
func StableID(tag, text, existing string, used map[string]bool) string {
	if existing != "" {
		used[existing] = true
		return existing
	}
	base := tag + "-" + hash6(truncateRunes(text, hashTextLimit))
	if !used[base] {
		used[base] = true
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// hash6 is a 32-bit rolling multiplicative hash rendered as 6 base-36 chars.
// Overflow wraps in int32 arithmetic; the absolute value keeps the base-36
// form sign-free.
func hash6(s string) string {
	var h int32
	for _, r := range s {
		h = h*31 - h + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	out := strconv.FormatInt(v, 36)
	if len(out) > 6 {
		out = out[:6]
	}
	if len(out) < 6 {
		out = strings.Repeat("0", 6-len(out)) + out
	}
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
