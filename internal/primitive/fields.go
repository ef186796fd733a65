package primitive

import (
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/layout"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// FieldGet reads a named field of a fixed-shape object. Each field access
// expression owns its own FieldGet so that its Site caches one location.
type FieldGet struct {
	site *layout.Site
}

func NewFieldGet(field string) *FieldGet {
	return &FieldGet{site: layout.NewSite(field)}
}

func (p *FieldGet) Name() string       { return "." + p.site.Field() }
func (p *FieldGet) Arity() int         { return 1 }
func (p *FieldGet) Site() *layout.Site { return p.site }

func (p *FieldGet) Apply(args ...object.Object) (object.Object, error) {
	if err := checkArgs(p, args); err != nil {
		return nil, err
	}
	return p.site.Get(args[0])
}

func (p *FieldGet) Infer([]typesystem.Category) typesystem.Category { return typesystem.Reference }

func (p *FieldGet) Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error) {
	if len(operands) != 1 {
		return 0, arityMismatch(p, operands)
	}
	if operands[0] != typesystem.Reference {
		return 0, unsupported(p, operands)
	}
	em.GetField(p.site)
	return typesystem.Reference, nil
}

// FieldSet writes a named field and yields the written value.
type FieldSet struct {
	site *layout.Site
}

func NewFieldSet(field string) *FieldSet {
	return &FieldSet{site: layout.NewSite(field)}
}

func (p *FieldSet) Name() string       { return "." + p.site.Field() + "=" }
func (p *FieldSet) Arity() int         { return 2 }
func (p *FieldSet) Site() *layout.Site { return p.site }

func (p *FieldSet) Apply(args ...object.Object) (object.Object, error) {
	if err := checkArgs(p, args); err != nil {
		return nil, err
	}
	if err := p.site.Set(args[0], args[1]); err != nil {
		return nil, err
	}
	return args[1], nil
}

func (p *FieldSet) Infer([]typesystem.Category) typesystem.Category { return typesystem.Reference }

func (p *FieldSet) Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error) {
	if len(operands) != 2 {
		return 0, arityMismatch(p, operands)
	}
	if operands[0] != typesystem.Reference {
		return 0, unsupported(p, operands)
	}
	switch operands[1] {
	case typesystem.Int:
		em.Adapt(emit.BoxInt, 0, p.Name())
	case typesystem.Boolean:
		em.Adapt(emit.BoxBool, 0, p.Name())
	}
	em.SetField(p.site)
	return typesystem.Reference, nil
}
