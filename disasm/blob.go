package disasm

import (
	"kcpu/hw"
	"kcpu/kcspec"
	"kcpu/lang"
)

// Source yields the instruction stream one word at a time; ok is false
// once exhausted. vm.WordIter satisfies this directly without either
// package importing the other (PROG memory never truly runs out -- an
// address past any loaded program just reads as zero -- but a finite
// source such as SliceSource does run out, so the interface carries an ok
// regardless of source).
type Source interface {
	Next() (word hw.Word, ok bool)
}

// SliceSource adapts a finite Word slice (e.g. a loaded .kb file) to
// Source, the shape the core API's disassemble_blob(words) takes.
type SliceSource struct {
	words []hw.Word
	pos   int
}

func NewSliceSource(words []hw.Word) *SliceSource {
	return &SliceSource{words: words}
}

func (s *SliceSource) Next() (hw.Word, bool) {
	if s.pos >= len(s.words) {
		return 0, false
	}
	w := s.words[s.pos]
	s.pos++
	return w, true
}

// DisassembledBlob is one decoded hardware instruction: the InstDef it
// belongs to and the reconstructed argument at each IU the InstDef
// declares a kind for (nil where the InstDef has no argument there).
type DisassembledBlob struct {
	Word hw.Word
	Imm  *hw.Word
	Def  *kcspec.InstDef
	Args [3]*lang.Arg
}

// DecodeBlob reads one word (and, if its load-data bit is set, a second
// immediate word) from src and decodes it against rom.
func DecodeBlob(src Source, rom *kcspec.UCodeROM) (DisassembledBlob, error) {
	word, ok := src.Next()
	if !ok {
		return DisassembledBlob{}, newErr(UnexpectedEndOfStream, "no more words")
	}
	inst := hw.Decode(word)
	opcode := hw.DecodeOpcode(word)

	def, ok := rom.InstDefFor(opcode)
	if !ok {
		return DisassembledBlob{}, newErr(InvalidOpcode, "opcode %#03x", opcode)
	}

	db := DisassembledBlob{Word: word, Def: def}
	var imm *hw.Word
	if inst.LoadData {
		v, ok := src.Next()
		if !ok {
			return DisassembledBlob{}, newErr(UnexpectedEndOfStream, "truncated immediate")
		}
		imm = &v
		db.Imm = imm
	}

	regs := [3]hw.PReg{inst.IU1, inst.IU2, inst.IU3}
	for iu := 0; iu < 3; iu++ {
		kind := def.Args[iu]
		if kind == nil {
			continue
		}
		reg := regs[iu]
		// A reserved ID register paired with an immediate means this slot
		// held a constant at assembly time, not a real register (spec.md
		// §4.9's "%rid register arg" special case).
		if reg == hw.ID && imm != nil {
			a := lang.ConstArg(lang.ResolvedConst(*imm))
			db.Args[iu] = &a
			continue
		}
		a := lang.RegArg(reg, kind.Width)
		db.Args[iu] = &a
	}
	return db, nil
}

func (db DisassembledBlob) asLangBlob() lang.Blob {
	var imm *lang.ConstBinding
	if db.Imm != nil {
		c := lang.ResolvedConst(*db.Imm)
		imm = &c
	}
	return lang.Blob{Word: db.Word, Imm: imm}
}

func blobsEqual(a, b DisassembledBlob) bool {
	if a.Word != b.Word {
		return false
	}
	if (a.Imm == nil) != (b.Imm == nil) {
		return false
	}
	return a.Imm == nil || *a.Imm == *b.Imm
}
