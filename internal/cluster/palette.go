package cluster

import (
	"strings"
)

// Palette maps cluster ids onto display colors. Index i is the color of
// cluster i.
type Palette []string

// NewPalette validates colors for k clusters and returns the first k. Every
// id in [0,k) gets a color and no two ids share one.
func NewPalette(colors []string, k int) (Palette, error) {
	if len(colors) < k {
		return nil, invalid("palette", "%d colors for %d clusters", len(colors), k)
	}
	p := make(Palette, k)
	seen := make(map[string]bool, k)
	for i := range k {
		c := strings.TrimSpace(colors[i])
		if c == "" {
			return nil, invalid("palette", "color %d is empty", i)
		}
		key := strings.ToLower(c)
		if seen[key] {
			return nil, invalid("palette", "duplicate color %q", c)
		}
		seen[key] = true
		p[i] = c
	}
	return p, nil
}

// Color returns the color for a cluster id.
func (p Palette) Color(id int) (string, bool) {
	if id < 0 || id >= len(p) {
		return "", false
	}
	return p[id], true
}

// ID returns the cluster id painted with color.
func (p Palette) ID(color string) (int, bool) {
	for i, c := range p {
		if strings.EqualFold(c, color) {
			return i, true
		}
	}
	return 0, false
}
