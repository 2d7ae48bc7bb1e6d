package asm

import (
	"fmt"

	"kcpu/hw"
	"kcpu/lang"
)

// element is one statement's contribution to the final word stream: either
// a label definition (no words, but marks the current offset) or a run of
// words, each possibly still tagged with an unresolved label reference.
type element struct {
	Loc       Location
	IsLabel   bool
	LabelName string
	Words     []lang.ConstBinding
}

// Generate lowers parsed Statements into the element stream Resolve
// consumes, expanding each Inst statement's alias into its underlying
// hardware Blobs.
func Generate(l *lang.Lang, stmts []Statement) ([]element, error) {
	out := make([]element, 0, len(stmts))
	for _, s := range stmts {
		el, err := generateOne(l, s)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func generateOne(l *lang.Lang, s Statement) (element, error) {
	switch s.Kind {
	case StmtLabelDef:
		if _, collide := l.Lookup(s.Label); collide {
			return element{}, errAt(PhaseGenerate, s.Loc, "label %q collides with an instruction family name", s.Label)
		}
		return element{Loc: s.Loc, IsLabel: true, LabelName: s.Label}, nil

	case StmtRawWords:
		return element{Loc: s.Loc, Words: s.Data}, nil

	case StmtRawBytes:
		words, err := wordsFromBytes(s.Loc, s.Data)
		if err != nil {
			return element{}, err
		}
		return element{Loc: s.Loc, Words: words}, nil

	case StmtRawString:
		return element{Loc: s.Loc, Words: stringWords(s.Str)}, nil

	case StmtInst:
		return generateInst(l, s)

	default:
		return element{}, errAt(PhaseGenerate, s.Loc, "unreachable statement kind")
	}
}

// stringWords packs a !string literal's bytes low-byte-first into words,
// padding with a trailing NUL if the byte count is odd (spec.md §6: "the
// bytes of the string padded to word alignment with NULs").
func stringWords(s string) []lang.ConstBinding {
	b := []byte(s)
	if len(b)%2 != 0 {
		b = append(b, 0)
	}
	out := make([]lang.ConstBinding, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		out = append(out, lang.ResolvedConst(hw.Word(b[i])|(hw.Word(b[i+1])<<hw.ByteWidth)))
	}
	return out
}

func generateInst(l *lang.Lang, s Statement) (element, error) {
	family, ok := l.Lookup(s.Name)
	if !ok {
		return element{}, errAt(PhaseGenerate, s.Loc, "unknown instruction: %s", s.Name)
	}

	constCount := 0
	args := make([]lang.Arg, len(s.Args))
	argStrs := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Val
		argStrs[i] = a.Val.String()
		if !a.Val.IsReg {
			constCount++
		}
	}
	if constCount > 1 {
		return element{}, errGenerate(s.Loc, argStrs, nil, "InstMultipleConstArgs: %s takes at most one constant argument", s.Name)
	}

	var matchBlobs []lang.Blob
	matches := 0
	candidates := make([]string, 0, len(family.Aliases))
	for _, alias := range family.Aliases {
		candidates = append(candidates, fmt.Sprintf("%s%v", alias.Name, alias.ArgKinds))
		blobs, ok := alias.Instantiate(args)
		if !ok {
			continue
		}
		matches++
		matchBlobs = blobs
	}
	switch {
	case matches == 0:
		return element{}, errGenerate(s.Loc, argStrs, candidates,
			"InstUnacceptableArgKinds: no variant of %s accepts this argument list", s.Name)
	case matches > 1:
		return element{}, errGenerate(s.Loc, argStrs, candidates,
			"%s: more than one alias variant matched (ambiguous instruction table)", s.Name)
	}

	words := make([]lang.ConstBinding, 0, len(matchBlobs)*2)
	for _, b := range matchBlobs {
		words = append(words, lang.ResolvedConst(b.Word))
		if b.Imm != nil {
			words = append(words, *b.Imm)
		}
	}
	return element{Loc: s.Loc, Words: words}, nil
}
