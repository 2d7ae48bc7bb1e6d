package asm

import (
	"kcpu/hw"
	"kcpu/lang"
)

// StmtKind distinguishes the five statement shapes spec.md §4.8 names.
type StmtKind int

const (
	StmtLabelDef StmtKind = iota
	StmtRawWords
	StmtRawBytes
	StmtRawString
	StmtInst
)

// Statement is one parsed logical line.
type Statement struct {
	Loc   Location
	Kind  StmtKind
	Label string
	Name  string
	Args  []Located[lang.Arg]     // StmtInst
	Data  []lang.ConstBinding     // StmtRawWords/StmtRawBytes
	Str   string                  // StmtRawString
}

// Parse turns a tokenized source into its Statement sequence. The first
// token of each line dictates the statement's shape; anything that token
// doesn't license appearing afterward is a located Parse error.
func Parse(lines [][]Located[Token]) ([]Statement, error) {
	var out []Statement
	for _, toks := range lines {
		stmt, err := parseLine(toks)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func parseLine(toks []Located[Token]) (Statement, error) {
	head := toks[0]
	loc := head.Loc

	switch head.Val.Kind {
	case TokLabelDef:
		if len(toks) > 1 {
			return Statement{}, errAt(PhaseParse, toks[1].Loc, "unexpected token after label definition")
		}
		return Statement{Loc: loc, Kind: StmtLabelDef, Label: head.Val.Text}, nil

	case TokSpecialName:
		return parseSpecial(loc, head.Val.Text, toks[1:])

	case TokName:
		return parseInst(loc, head.Val.Text, toks[1:])

	default:
		return Statement{}, errAt(PhaseParse, loc, "line must start with a label, instruction, or !command")
	}
}

func parseSpecial(loc Location, name string, rest []Located[Token]) (Statement, error) {
	switch name {
	case "string":
		if len(rest) != 1 || rest[0].Val.Kind != TokString {
			return Statement{}, errAt(PhaseParse, loc, "!string requires exactly one string literal argument")
		}
		return Statement{Loc: loc, Kind: StmtRawString, Str: rest[0].Val.Text}, nil

	case "word":
		data, err := parseConstList(rest)
		if err != nil {
			return Statement{}, err
		}
		return Statement{Loc: loc, Kind: StmtRawWords, Data: data}, nil

	case "byte":
		data, err := parseConstList(rest)
		if err != nil {
			return Statement{}, err
		}
		return Statement{Loc: loc, Kind: StmtRawBytes, Data: data}, nil

	default:
		return Statement{}, errAt(PhaseParse, loc, "unknown special command: !%s", name)
	}
}

func parseConstList(rest []Located[Token]) ([]lang.ConstBinding, error) {
	out := make([]lang.ConstBinding, 0, len(rest))
	for _, t := range rest {
		c, err := constFromToken(t)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func constFromToken(t Located[Token]) (lang.ConstBinding, error) {
	switch t.Val.Kind {
	case TokConst:
		return lang.ResolvedConst(t.Val.ConstVal), nil
	case TokName:
		return lang.UnresolvedConst(t.Val.Text), nil
	default:
		return lang.ConstBinding{}, errAt(PhaseParse, t.Loc, "expected a constant or label reference")
	}
}

func parseInst(loc Location, name string, rest []Located[Token]) (Statement, error) {
	args := make([]Located[lang.Arg], 0, len(rest))
	for _, t := range rest {
		a, err := argFromToken(t)
		if err != nil {
			return Statement{}, err
		}
		args = append(args, Located[lang.Arg]{Loc: t.Loc, Val: a})
	}
	return Statement{Loc: loc, Kind: StmtInst, Name: name, Args: args}, nil
}

func argFromToken(t Located[Token]) (lang.Arg, error) {
	switch t.Val.Kind {
	case TokRegRef:
		return lang.RegArg(t.Val.Reg, t.Val.Width), nil
	case TokConst:
		return lang.ConstArg(lang.ResolvedConst(t.Val.ConstVal)), nil
	case TokName:
		return lang.ConstArg(lang.UnresolvedConst(t.Val.Text)), nil
	default:
		return lang.Arg{}, errAt(PhaseParse, t.Loc, "unexpected argument token")
	}
}

// wordsFromBytes packs a byte list into words, low byte first; an odd
// count is the BadDataParity error spec.md §4.8 calls out.
func wordsFromBytes(loc Location, bytes []lang.ConstBinding) ([]lang.ConstBinding, error) {
	if len(bytes)%2 != 0 {
		return nil, errAt(PhaseGenerate, loc, "BadDataParity: odd number of bytes in !byte")
	}
	out := make([]lang.ConstBinding, 0, len(bytes)/2)
	for i := 0; i < len(bytes); i += 2 {
		lo, hi := bytes[i], bytes[i+1]
		if lo.Resolved && hi.Resolved {
			out = append(out, lang.ResolvedConst(lo.Value|(hi.Value<<hw.ByteWidth)))
			continue
		}
		// An unresolved label in a byte pair can't be packed until Resolve
		// knows its value, and Resolve only substitutes whole words. Byte
		// data referencing labels is rare enough (string/byte tables are
		// almost always resolved literals) that this case is a located
		// error.
		return nil, errAt(PhaseGenerate, loc, "!byte does not support unresolved label operands")
	}
	return out, nil
}
