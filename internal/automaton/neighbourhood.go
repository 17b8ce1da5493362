package automaton

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/tui-automata/internal/core"
)

// Shape selects which offsets a Neighbourhood covers.
type Shape uint8

const (
	// VonNeumann covers offsets with 0 < |dx|+|dy| <= radius.
	VonNeumann Shape = iota
	// Moore covers the (2r+1)x(2r+1) square around the center, center excluded.
	Moore
)

func (s Shape) String() string {
	switch s {
	case VonNeumann:
		return "von-neumann"
	case Moore:
		return "moore"
	default:
		return fmt.Sprintf("Shape(%d)", uint8(s))
	}
}

// Geometry is the part of a board a Neighbourhood needs to resolve coordinates.
// *Board satisfies it for every state type.
type Geometry interface {
	Width() int
	Height() int
	Periodic() bool
}

// Site is one resolved neighbour slot. Present is false when the offset points
// outside a Fixed board; Coord then holds the unresolved coordinate.
type Site struct {
	Offset  Offset
	Coord   Coord
	Present bool
}

// Neighbour is a neighbour slot paired with the state read from the board.
// Absent slots carry the boundary default state.
type Neighbour[S State] struct {
	Offset  Offset
	Coord   Coord
	State   S
	Present bool
}

// Neighbourhood enumerates the cells around a center for a given shape and
// radius. Resolved coordinate lists are cached per center and keyed by board
// geometry; a query against a board of different size or boundary kind clears
// the cache first.
//
// A Neighbourhood is safe for concurrent use. Sharing one between boards of
// different geometry is correct but defeats the cache.
type Neighbourhood struct {
	shape   Shape
	radius  int
	offsets []Offset
	cache   geometryCache
}

type geometryKey struct {
	width, height int
	periodic      bool
}

type geometryCache struct {
	mu    sync.RWMutex
	key   geometryKey
	sites map[Coord][]Site
}

// NewNeighbourhood returns a neighbourhood of the given shape. A zero radius
// yields an empty neighbourhood.
func NewNeighbourhood(shape Shape, radius int) (*Neighbourhood, error) {
	if radius < 0 {
		return nil, fmt.Errorf("automaton: negative neighbourhood radius %d", radius)
	}
	if shape != VonNeumann && shape != Moore {
		return nil, fmt.Errorf("automaton: unknown neighbourhood shape %v", shape)
	}
	return &Neighbourhood{
		shape:   shape,
		radius:  radius,
		offsets: offsetsFor(shape, radius),
	}, nil
}

// MustNeighbourhood is like NewNeighbourhood but panics on invalid arguments.
func MustNeighbourhood(shape Shape, radius int) *Neighbourhood {
	n, err := NewNeighbourhood(shape, radius)
	if err != nil {
		panic(err)
	}
	return n
}

// offsetsFor enumerates offsets with dx ascending in the outer loop and dy
// ascending in the inner loop.
func offsetsFor(shape Shape, radius int) []Offset {
	var out []Offset
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			o := Offset{DX: dx, DY: dy}
			if shape == VonNeumann && o.Manhattan() > radius {
				continue
			}
			out = append(out, o)
		}
	}
	return out
}

// Shape returns the configured shape.
func (n *Neighbourhood) Shape() Shape { return n.shape }

// Radius returns the configured radius.
func (n *Neighbourhood) Radius() int { return n.radius }

// Size returns the number of neighbour slots every query yields.
func (n *Neighbourhood) Size() int { return len(n.offsets) }

// Offsets returns a copy of the ordered offset list.
func (n *Neighbourhood) Offsets() []Offset {
	out := make([]Offset, len(n.offsets))
	copy(out, n.offsets)
	return out
}

func (n *Neighbourhood) String() string {
	return fmt.Sprintf("%v(%d)", n.shape, n.radius)
}

// Coords resolves the neighbour slots of (x, y) on g. The result always has
// Size() entries in offset order and is shared with the cache, so callers must
// not modify it.
func (n *Neighbourhood) Coords(g Geometry, x, y int) []Site {
	key := geometryKey{width: g.Width(), height: g.Height(), periodic: g.Periodic()}
	center := Coord{X: x, Y: y}

	n.cache.mu.RLock()
	if n.cache.sites != nil && n.cache.key == key {
		if sites, ok := n.cache.sites[center]; ok {
			n.cache.mu.RUnlock()
			return sites
		}
	}
	n.cache.mu.RUnlock()

	sites := n.resolve(key, center)

	n.cache.mu.Lock()
	if n.cache.sites == nil || n.cache.key != key {
		n.cache.key = key
		n.cache.sites = make(map[Coord][]Site)
	}
	n.cache.sites[center] = sites
	n.cache.mu.Unlock()

	return sites
}

func (n *Neighbourhood) resolve(key geometryKey, center Coord) []Site {
	sites := make([]Site, len(n.offsets))
	for i, o := range n.offsets {
		c := center.Add(o)
		present := true
		if key.periodic {
			c = Coord{X: core.Mod(c.X, key.width), Y: core.Mod(c.Y, key.height)}
		} else {
			present = c.X >= 0 && c.X < key.width && c.Y >= 0 && c.Y < key.height
		}
		sites[i] = Site{Offset: o, Coord: c, Present: present}
	}
	return sites
}

// Invalidate drops every cached coordinate list.
func (n *Neighbourhood) Invalidate() {
	n.cache.mu.Lock()
	n.cache.sites = nil
	n.cache.mu.Unlock()
}

// cached returns the number of centers currently cached.
func (n *Neighbourhood) cached() int {
	n.cache.mu.RLock()
	defer n.cache.mu.RUnlock()
	return len(n.cache.sites)
}

// States returns the neighbour states of (x, y) on b in offset order.
// Slots outside a Fixed board read as the boundary default, so the result
// always has n.Size() entries.
func States[S State](n *Neighbourhood, b *Board[S], x, y int) []S {
	sites := n.Coords(b, x, y)
	out := make([]S, len(sites))
	def := b.BoundaryCondition().Default
	for i, site := range sites {
		if site.Present {
			out[i] = b.At(site.Coord)
		} else {
			out[i] = def
		}
	}
	return out
}

// StatesWithOffsets is States with each state paired with its offset and
// resolved coordinate, for rules that care about direction.
func StatesWithOffsets[S State](n *Neighbourhood, b *Board[S], x, y int) []Neighbour[S] {
	sites := n.Coords(b, x, y)
	out := make([]Neighbour[S], len(sites))
	def := b.BoundaryCondition().Default
	for i, site := range sites {
		nb := Neighbour[S]{Offset: site.Offset, Coord: site.Coord, Present: site.Present, State: def}
		if site.Present {
			nb.State = b.At(site.Coord)
		}
		out[i] = nb
	}
	return out
}

// CountMatching returns how many neighbour states of (x, y) satisfy pred.
func CountMatching[S State](n *Neighbourhood, b *Board[S], x, y int, pred func(S) bool) int {
	count := 0
	def := b.BoundaryCondition().Default
	for _, site := range n.Coords(b, x, y) {
		s := def
		if site.Present {
			s = b.At(site.Coord)
		}
		if pred(s) {
			count++
		}
	}
	return count
}
