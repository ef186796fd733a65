package layout

import (
	"sync/atomic"

	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/object"
)

// siteEntry is a fast path built against one layout of one definition.
type siteEntry struct {
	def    *Definition
	layout *Layout
	index  int
}

// Site is a monomorphic inline cache for one field access expression. It is
// shared by every tier executing that expression.
type Site struct {
	field string
	entry atomic.Pointer[siteEntry]

	hits     atomic.Uint64
	misses   atomic.Uint64
	rebuilds atomic.Uint64
}

// SiteStats holds the counters of a Site.
type SiteStats struct {
	Hits     uint64
	Misses   uint64
	Rebuilds uint64
}

func NewSite(field string) *Site {
	return &Site{field: field}
}

func (s *Site) Field() string { return s.field }

func (s *Site) Stats() SiteStats {
	return SiteStats{
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Rebuilds: s.rebuilds.Load(),
	}
}

// cached returns the entry usable for obj, or nil.
func (s *Site) cached(obj *Object) *siteEntry {
	e := s.entry.Load()
	if e == nil || e.def != obj.def || !e.layout.guard.Valid() {
		return nil
	}
	return e
}

// rebuild constructs a new fast path against def's current layout.
func (s *Site) rebuild(def *Definition) error {
	l, idx, err := def.Resolve(s.field)
	if err != nil {
		return err
	}
	s.entry.Store(&siteEntry{def: def, layout: l, index: idx})
	s.rebuilds.Add(1)
	return nil
}

func receiver(op string, v object.Object) (*Object, error) {
	obj, ok := v.(*Object)
	if !ok {
		return nil, diagnostics.NewRuntimeTypeError(op, "object", object.TypeName(v))
	}
	return obj, nil
}

// Get reads the site's field from v.
func (s *Site) Get(v object.Object) (object.Object, error) {
	obj, err := receiver("."+s.field, v)
	if err != nil {
		return nil, err
	}
	if e := s.cached(obj); e != nil {
		if val, ok := obj.getAt(e.layout, e.index); ok {
			s.hits.Add(1)
			return val, nil
		}
	}
	s.misses.Add(1)
	if err := s.rebuild(obj.def); err != nil {
		return nil, err
	}
	return obj.Get(s.field)
}

// Set writes the site's field on v.
func (s *Site) Set(v object.Object, val object.Object) error {
	obj, err := receiver("."+s.field+"=", v)
	if err != nil {
		return err
	}
	if e := s.cached(obj); e != nil {
		if obj.setAt(e.layout, e.index, val) {
			s.hits.Add(1)
			return nil
		}
	}
	s.misses.Add(1)
	if err := s.rebuild(obj.def); err != nil {
		return err
	}
	return obj.Set(s.field, val)
}
