package seed

import "strings"

// idAlphabet matches the URL-safe alphabet of short random ids.
const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

const disabledSuffix = " (disabled)"

// newShortID returns an n-char random id that is not yet in taken.
// 4 chars over a 64-symbol alphabet gives ~16M ids, plenty for a session,
// but collisions are still retried rather than assumed away.
func (g *Generator) newShortID(n int, taken map[string]bool) string {
	for {
		var b strings.Builder
		b.Grow(n)
		for i := 0; i < n; i++ {
			b.WriteByte(idAlphabet[g.rnd.IntN(len(idAlphabet))])
		}
		id := b.String()
		if !taken[id] && !taken[id+disabledSuffix] {
			taken[id] = true
			return id
		}
	}
}
