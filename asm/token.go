package asm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"kcpu/hw"
)

// comment matches a '#' and everything after it on a line (spec.md §6): the
// same find-and-strip approach the VM's own compiler used for its '//'
// comments, just with the assembly language's own comment character.
var comment = regexp.MustCompile(`#.*`)

// TokenKind distinguishes the lexical categories spec.md §4.8 names.
type TokenKind int

const (
	TokLabelDef TokenKind = iota
	TokSpecialName
	TokRegRef
	TokConst
	TokString
	TokName
)

// Token is one lexed unit. Only the fields relevant to Kind are populated.
type Token struct {
	Kind TokenKind
	Text string // LabelDef/SpecialName/Name: the bare name. String: the unescaped contents.

	Reg   hw.PReg
	Width hw.Width

	ConstVal hw.Word // populated when Text is empty and the value is already numeric
	IsLabel  bool    // never set: a bare name (label reference) always lexes as TokName
}

// Located pairs a value with the source Location it came from.
type Located[T any] struct {
	Loc Location
	Val T
}

var escapeSeqReplacements = map[string]string{
	`\a`: "\a", `\b`: "\b", `\t`: "\t", `\n`: "\n",
	`\r`: "\r", `\f`: "\f", `\v`: "\v", `\"`: "\"",
}

func unescape(s string) string {
	for orig, rep := range escapeSeqReplacements {
		s = strings.ReplaceAll(s, orig, rep)
	}
	return s
}

// Tokenize lexes source line by line, stripping comments and splitting
// each line on whitespace outside of a string literal.
func Tokenize(source string) ([][]Located[Token], error) {
	var out [][]Located[Token]
	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		line := comment.ReplaceAllString(raw, "")
		toks, err := tokenizeLine(lineNo, line)
		if err != nil {
			return nil, err
		}
		if len(toks) > 0 {
			out = append(out, toks)
		}
	}
	return out, nil
}

func tokenizeLine(lineNo int, line string) ([]Located[Token], error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}
	col := strings.Index(line, trimmed) + 1

	if strings.HasSuffix(trimmed, ":") {
		name := strings.TrimSuffix(trimmed, ":")
		if name == "" || strings.ContainsFunc(name, unicode.IsSpace) {
			return nil, errAt(PhaseTokenize, Location{lineNo, col}, "invalid label definition: %q", trimmed)
		}
		return []Located[Token]{{Loc: Location{lineNo, col}, Val: Token{Kind: TokLabelDef, Text: name}}}, nil
	}

	var toks []Located[Token]
	rest := trimmed
	for rest != "" {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		pieceCol := col + (len(trimmed) - len(rest))

		var piece string
		if rest[0] == '"' {
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				return nil, errAt(PhaseTokenize, Location{lineNo, pieceCol}, "unterminated string literal")
			}
			piece = rest[:end+2]
			rest = rest[len(piece):]
		} else {
			end := strings.IndexAny(rest, " \t")
			if end < 0 {
				piece = rest
				rest = ""
			} else {
				piece = rest[:end]
				rest = rest[end:]
			}
		}

		tok, err := lexPiece(lineNo, pieceCol, piece)
		if err != nil {
			return nil, err
		}
		toks = append(toks, Located[Token]{Loc: Location{lineNo, pieceCol}, Val: tok})
	}
	return toks, nil
}

func lexPiece(lineNo, col int, piece string) (Token, error) {
	loc := Location{lineNo, col}
	switch {
	case strings.HasPrefix(piece, `"`):
		if !strings.HasSuffix(piece, `"`) || len(piece) < 2 {
			return Token{}, errAt(PhaseTokenize, loc, "unterminated string literal: %q", piece)
		}
		return Token{Kind: TokString, Text: unescape(piece[1 : len(piece)-1])}, nil

	case strings.HasPrefix(piece, "!"):
		name := piece[1:]
		if name == "" {
			return Token{}, errAt(PhaseTokenize, loc, "empty special command name")
		}
		return Token{Kind: TokSpecialName, Text: name}, nil

	case strings.HasPrefix(piece, "%"):
		return lexRegRef(lineNo, col, piece)

	case strings.HasPrefix(piece, "$"):
		return lexConst(lineNo, col, hw.WidthWord, piece[1:])
	case strings.HasPrefix(piece, "l$"):
		return lexConst(lineNo, col, hw.WidthByte(hw.Lo), piece[2:])
	case strings.HasPrefix(piece, "h$"):
		return lexConst(lineNo, col, hw.WidthByte(hw.Hi), piece[2:])

	default:
		return Token{Kind: TokName, Text: piece}, nil
	}
}

func lexRegRef(lineNo, col int, piece string) (Token, error) {
	loc := Location{lineNo, col}
	if len(piece) < 2 {
		return Token{}, errAt(PhaseTokenize, loc, "invalid register reference: %q", piece)
	}
	var width hw.Width
	switch piece[1] {
	case 'r':
		width = hw.WidthWord
	case 'l':
		width = hw.WidthByte(hw.Lo)
	case 'h':
		width = hw.WidthByte(hw.Hi)
	default:
		return Token{}, errAt(PhaseTokenize, loc, "invalid register reference: %q", piece)
	}
	reg, ok := hw.ParsePRegAsmName(piece[2:])
	if !ok {
		return Token{}, errAt(PhaseTokenize, loc, "unknown register: %q", piece)
	}
	return Token{Kind: TokRegRef, Reg: reg, Width: width}, nil
}

func lexConst(lineNo, col int, width hw.Width, numStr string) (Token, error) {
	loc := Location{lineNo, col}
	if numStr == "" {
		return Token{}, errAt(PhaseTokenize, loc, "empty constant literal")
	}
	// A bare name where a number is expected isn't possible here: spec.md
	// reserves unprefixed bare names entirely for label references, parsed
	// as TokName instead of TokConst. l$/h$/$ are only ever followed by a
	// numeric literal.
	v, err := strconv.ParseInt(numStr, 0, 64)
	if err != nil {
		return Token{}, wrapAt(PhaseTokenize, loc, err, "bad numeric literal "+numStr)
	}
	return Token{Kind: TokConst, Width: width, ConstVal: hw.Word(uint64(v))}, nil
}
