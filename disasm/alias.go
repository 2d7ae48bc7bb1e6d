package disasm

import (
	"fmt"

	"kcpu/kcspec"
	"kcpu/lang"
)

// Resolved is one fully-matched alias: its family, the chosen alias, the
// argument list reconstructed from the consumed blobs, and those blobs
// themselves (exposed through Step's Context).
type Resolved struct {
	Family *lang.Family
	Alias  *lang.Alias
	Args   []lang.Arg
	Blobs  []DisassembledBlob
}

// candidate is one alias still in the running: how far into its Virtual
// list decoding has progressed, and the argument slots confirmed so far.
type candidate struct {
	family *lang.Family
	alias  *lang.Alias
	vIdx   int
	args   []lang.Arg
	have   []bool
	blobs  []DisassembledBlob
}

func startCandidates(l *lang.Lang) []*candidate {
	var out []*candidate
	for _, f := range l.AllFamilies() {
		for _, a := range f.Aliases {
			out = append(out, &candidate{
				family: f,
				alias:  a,
				args:   make([]lang.Arg, len(a.ArgKinds)),
				have:   make([]bool, len(a.ArgKinds)),
			})
		}
	}
	return out
}

func argsEqual(a, b lang.Arg) bool {
	if a.IsReg != b.IsReg {
		return false
	}
	if a.IsReg {
		return a.Reg == b.Reg && a.Width == b.Width
	}
	return a.Const.Resolved && b.Const.Resolved && a.Const.Value == b.Const.Value
}

// advance tries to extend c with db as its next Virtual. ok is false if db
// contradicts c's alias (wrong InstDef, a bound slot disagreeing, or a
// previously-confirmed argument disagreeing).
func (c *candidate) advance(db DisassembledBlob) (*candidate, bool) {
	v := c.alias.Virtuals[c.vIdx]
	if v.Def != db.Def {
		return nil, false
	}

	next := &candidate{
		family: c.family,
		alias:  c.alias,
		vIdx:   c.vIdx + 1,
		args:   append([]lang.Arg(nil), c.args...),
		have:   append([]bool(nil), c.have...),
		blobs:  append(append([]DisassembledBlob(nil), c.blobs...), db),
	}

	for iu := 0; iu < 3; iu++ {
		slot := v.Slots[iu]
		arg := db.Args[iu]
		switch {
		case slot == nil:
			if arg != nil {
				return nil, false
			}
		case slot.IsArg():
			if arg == nil {
				return nil, false
			}
			idx := slot.ArgIndex()
			if next.have[idx] {
				if !argsEqual(next.args[idx], *arg) {
					return nil, false
				}
			} else {
				next.args[idx] = *arg
				next.have[idx] = true
			}
		default:
			// Bound reg/const slot: the decoded blob's argument here must
			// literally equal what the Virtual hard-codes.
			if arg == nil {
				return nil, false
			}
			if !slotMatchesArg(*slot, *arg) {
				return nil, false
			}
		}
	}
	return next, true
}

func slotMatchesArg(s lang.Slot, a lang.Arg) bool {
	bound, ok := s.Bound()
	if !ok {
		return false
	}
	return argsEqual(bound, a)
}

func (c *candidate) complete() bool {
	return c.vIdx >= len(c.alias.Virtuals)
}

func (c *candidate) label() string {
	return fmt.Sprintf("%s/%s%v", c.family.Name, c.alias.Name, c.alias.ArgKinds)
}

// DisassembleAlias runs the candidate-elimination match described in
// spec.md §4.9: decode blobs from src one at a time, narrowing the live
// candidate set, until nothing is left alive. Among the aliases that fully
// matched along the way, the most specific one wins; ties and empty
// results are errors.
func DisassembleAlias(src Source, rom *kcspec.UCodeROM, l *lang.Lang) (*Resolved, error) {
	live := startCandidates(l)
	var matches []*candidate
	var everConsidered []string

	for len(live) > 0 {
		db, err := DecodeBlob(src, rom)
		if err != nil {
			return nil, err
		}

		next := make([]*candidate, 0, len(live))
		for _, c := range live {
			everConsidered = append(everConsidered, c.label())
			adv, ok := c.advance(db)
			if !ok {
				continue
			}
			if adv.complete() {
				matches = append(matches, adv)
				continue
			}
			next = append(next, adv)
		}
		live = next
	}

	if len(matches) == 0 {
		return nil, newErrWithCandidates(NoSuitableAlias, dedupe(everConsidered), "no alias matched the decoded instruction stream")
	}

	best := matches[0]
	ambiguous := false
	for _, m := range matches[1:] {
		cmp := lang.CompareSpecificity(m.alias.Specificity(), best.alias.Specificity())
		switch {
		case cmp > 0:
			best = m
			ambiguous = false
		case cmp == 0:
			ambiguous = true
		}
	}
	if ambiguous {
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.label())
		}
		return nil, newErrWithCandidates(AmbiguousAliasSpecificity, names, "multiple aliases matched with equal specificity")
	}

	for i, have := range best.have {
		if !have {
			return nil, newErr(CouldNotResolveAliasArgs, "argument %d never bound by any virtual", i)
		}
	}

	if err := verify(best); err != nil {
		return nil, err
	}

	return &Resolved{Family: best.family, Alias: best.alias, Args: best.args, Blobs: best.blobs}, nil
}

// verify re-instantiates the chosen alias against its resolved args and
// byte-compares the result against the blobs actually consumed -- a bug
// check (spec.md §4.9), not a user-facing failure mode.
func verify(c *candidate) error {
	blobs, ok := c.alias.Instantiate(c.args)
	if !ok || len(blobs) != len(c.blobs) {
		panic("disasm: resolved alias failed to re-instantiate against its own decoded arguments")
	}
	for i, b := range blobs {
		want := DisassembledBlob{Word: b.Word}
		if b.Imm != nil {
			v := b.Imm.Value
			want.Imm = &v
		}
		if !blobsEqual(want, c.blobs[i]) {
			panic("disasm: resolved alias re-encoded to different bytes than it was decoded from")
		}
	}
	return nil
}

func dedupe(ss []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
