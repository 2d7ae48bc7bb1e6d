package lang

import (
	"testing"

	"kcpu/kcspec"
)

func TestNewBuiltinLangRegistersEveryInstDef(t *testing.T) {
	l := NewBuiltinLang(kcspec.InstDefs)
	for i := range kcspec.InstDefs {
		d := &kcspec.InstDefs[i]
		f, ok := l.Lookup(d.Name)
		if !ok {
			t.Fatalf("InstDef %s has no registered family", d.Name)
		}
		found := false
		for _, a := range f.Aliases {
			if a == l.byDef[d] {
				found = true
			}
		}
		if !found {
			t.Fatalf("family %s does not contain its auto-registered alias", d.Name)
		}
	}
}

func TestNotAliasIsXorWithAllOnesMask(t *testing.T) {
	l := NewBuiltinLang(kcspec.InstDefs)
	f, ok := l.Lookup("NOT")
	if !ok || len(f.Aliases) != 1 {
		t.Fatal("expected exactly one NOT alias")
	}
	a := f.Aliases[0]
	if len(a.ArgKinds) != 1 {
		t.Fatalf("NOT should take exactly one argument, got %d", len(a.ArgKinds))
	}
	if len(a.Virtuals) != 1 {
		t.Fatalf("NOT should expand to exactly one Virtual, got %d", len(a.Virtuals))
	}
	v := a.Virtuals[0]
	if v.Def.Name != "XOR" {
		t.Fatalf("NOT should expand to XOR, got %s", v.Def.Name)
	}
	mask, ok := v.Slots[1].Bound()
	if !ok || mask.IsReg || mask.Const.Value != 0xFFFF {
		t.Fatalf("NOT's XOR should carry the constant 0xFFFF, got %v", mask)
	}
}

func TestPushaExpandsToAllEightRegisters(t *testing.T) {
	l := NewBuiltinLang(kcspec.InstDefs)
	f, ok := l.Lookup("PUSHA")
	if !ok || len(f.Aliases) != 1 {
		t.Fatal("expected exactly one PUSHA alias")
	}
	a := f.Aliases[0]
	if len(a.ArgKinds) != 0 {
		t.Fatalf("PUSHA should take no arguments, got %d", len(a.ArgKinds))
	}
	if len(a.Virtuals) != 8 {
		t.Fatalf("PUSHA should expand to 8 Virtuals, got %d", len(a.Virtuals))
	}
}

func TestAddFamilyHasNonCollidingArities(t *testing.T) {
	l := NewBuiltinLang(kcspec.InstDefs)
	f, ok := l.Lookup("ADD")
	if !ok || len(f.Aliases) != 2 {
		t.Fatal("expected exactly two ADD aliases (2-arg and 3-arg forms)")
	}
	if Collides(f.Aliases[0], f.Aliases[1]) {
		t.Fatal("ADD-2 and ADD-3 have different arity and must not collide")
	}
}
