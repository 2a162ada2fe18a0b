// Package overlay holds the user geometry drawn on top of the base map:
// point marks with captions, tracks, filled areas, and the indexes the
// renderer uses to pick out what is visible. Everything here works in
// geographic degrees; projection to pixels happens at draw time.
package overlay

import (
	"fmt"
	"math"
	"sort"

	"github.com/littleearth/osmmap/proj"
)

// MapMark is a single point of interest on the map.
type MapMark struct {
	Position proj.GeoPoint
	Caption  string

	// Layer must not change while the mark is in a MarkList; the list
	// keeps its order and lookups keyed on it. Extract, change, re-add.
	Layer int

	Visible  bool
	Selected bool

	// Style carries per-mark attribute values; only the fields named in
	// Override take effect, the rest come from the list default.
	Style    MarkStyle
	Override StyleOverride

	// Data is an opaque caller payload carried with the mark.
	Data any
}

// NewMapMark returns a visible mark on layer 0 at the given position.
func NewMapMark(pos proj.GeoPoint, caption string) *MapMark {
	return &MapMark{Position: pos, Caption: caption, Visible: true}
}

// EffectiveStyle resolves the mark's displayed style against a list default.
func (m *MapMark) EffectiveStyle(def MarkStyle) MarkStyle {
	return def.merge(m.Style, m.Override)
}

// MarkEvent tells an OnItemNotify observer what happened to a mark.
type MarkEvent int

const (
	// MarkAdded: the mark has been inserted into the list.
	MarkAdded MarkEvent = iota
	// MarkRemoved: the mark has been removed and the list no longer
	// references it.
	MarkRemoved
	// MarkExtracted: the mark has been removed with ownership handed back
	// to the caller.
	MarkExtracted
)

// MarkList keeps marks sorted by ascending layer, preserving insertion
// order within a layer. The renderer walks it front to back so higher
// layers paint over lower ones.
//
// The list is not safe for concurrent use; like the rest of the viewport
// state it belongs to a single goroutine.
type MarkList struct {
	marks []*MapMark

	updateDepth int
	dirty       bool

	// DefaultStyle is applied to every mark except for the fields the
	// mark itself overrides.
	DefaultStyle MarkStyle

	// OnChange fires after the list content changes. BeginUpdate
	// suppresses it; a batch that changed anything fires it once at the
	// closing EndUpdate.
	OnChange func()

	// OnItemNotify fires for every single mark entering or leaving the
	// list, batch or not.
	OnItemNotify func(*MapMark, MarkEvent)
}

// NewMarkList returns an empty list with the default mark style.
func NewMarkList() *MarkList {
	return &MarkList{DefaultStyle: DefaultMarkStyle()}
}

// Count returns the number of marks in the list.
func (l *MarkList) Count() int {
	return len(l.marks)
}

// Get returns the mark at index i. The index must be in range.
func (l *MarkList) Get(i int) *MapMark {
	l.mustIndex(i)
	return l.marks[i]
}

// Add inserts the mark behind every existing mark of the same layer and
// returns its index. Insertion position is found by binary search, so the
// list stays layer-sorted without ever re-sorting.
func (l *MarkList) Add(m *MapMark) int {
	if m == nil {
		panic("overlay: Add of nil mark")
	}
	i := sort.Search(len(l.marks), func(k int) bool {
		return l.marks[k].Layer > m.Layer
	})
	l.marks = append(l.marks, nil)
	copy(l.marks[i+1:], l.marks[i:])
	l.marks[i] = m

	l.notify(m, MarkAdded)
	l.changed()
	return i
}

// Remove deletes the mark at index i. The index must be in range.
func (l *MarkList) Remove(i int) {
	l.mustIndex(i)
	m := l.marks[i]
	l.marks = append(l.marks[:i], l.marks[i+1:]...)

	l.notify(m, MarkRemoved)
	l.changed()
}

// Extract deletes the mark at index i and returns it, signalling observers
// that ownership moved back to the caller. The index must be in range.
func (l *MarkList) Extract(i int) *MapMark {
	l.mustIndex(i)
	m := l.marks[i]
	l.marks = append(l.marks[:i], l.marks[i+1:]...)

	l.notify(m, MarkExtracted)
	l.changed()
	return m
}

// Clear removes every mark, notifying observers per mark and firing a
// single change.
func (l *MarkList) Clear() {
	if len(l.marks) == 0 {
		return
	}
	removed := l.marks
	l.marks = nil
	for _, m := range removed {
		l.notify(m, MarkRemoved)
	}
	l.changed()
}

// IndexOf returns the current index of the mark, or -1 if it is not in the
// list. The layer sort bounds the lookup to the mark's own layer block.
func (l *MarkList) IndexOf(m *MapMark) int {
	if m == nil {
		return -1
	}
	i := sort.Search(len(l.marks), func(k int) bool {
		return l.marks[k].Layer >= m.Layer
	})
	for ; i < len(l.marks) && l.marks[i].Layer == m.Layer; i++ {
		if l.marks[i] == m {
			return i
		}
	}
	return -1
}

// Find returns the index of the next mark whose position matches geo within
// tolerance degrees on both axes, scanning forward from the mark after
// startAfter. Pass startAfter = -1 to scan from the beginning, then feed
// each result back in to enumerate every match exactly once. Returns -1
// when no further mark matches.
//
// considerSize is accepted for callers that want hit areas grown by the
// rendered glyph size; the current implementation matches by position only
// and ignores it.
func (l *MarkList) Find(geo proj.GeoPoint, tolerance float64, considerSize bool, startAfter int) int {
	start := startAfter + 1
	if start < 0 {
		start = 0
	}
	for i := start; i < len(l.marks); i++ {
		p := l.marks[i].Position
		if math.Abs(p.Lon-geo.Lon) <= tolerance && math.Abs(p.Lat-geo.Lat) <= tolerance {
			return i
		}
	}
	return -1
}

// FindIn returns the index of the next mark positioned inside the
// geographic rectangle, scanning forward from the mark after startAfter.
// The resume protocol matches Find.
func (l *MarkList) FindIn(r proj.GeoRect, startAfter int) int {
	start := startAfter + 1
	if start < 0 {
		start = 0
	}
	for i := start; i < len(l.marks); i++ {
		if r.Contains(l.marks[i].Position) {
			return i
		}
	}
	return -1
}

// BeginUpdate opens a batch: OnChange stays quiet until the matching
// EndUpdate. Batches nest.
func (l *MarkList) BeginUpdate() {
	l.updateDepth++
}

// EndUpdate closes a batch. Closing the outermost batch fires OnChange once
// if anything changed inside it. Calling EndUpdate without a matching
// BeginUpdate panics.
func (l *MarkList) EndUpdate() {
	if l.updateDepth == 0 {
		panic("overlay: EndUpdate without BeginUpdate")
	}
	l.updateDepth--
	if l.updateDepth == 0 && l.dirty {
		l.dirty = false
		if l.OnChange != nil {
			l.OnChange()
		}
	}
}

func (l *MarkList) changed() {
	if l.updateDepth > 0 {
		l.dirty = true
		return
	}
	if l.OnChange != nil {
		l.OnChange()
	}
}

func (l *MarkList) notify(m *MapMark, ev MarkEvent) {
	if l.OnItemNotify != nil {
		l.OnItemNotify(m, ev)
	}
}

func (l *MarkList) mustIndex(i int) {
	if i < 0 || i >= len(l.marks) {
		panic(fmt.Sprintf("overlay: mark index %d out of range [0, %d)", i, len(l.marks)))
	}
}
