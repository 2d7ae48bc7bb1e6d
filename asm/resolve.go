package asm

import "kcpu/hw"

// Resolve performs spec.md §4.8's two resolve passes: first computing every
// label's byte offset from the words preceding it, then substituting each
// unresolved constant's tag against that label map.
func Resolve(elements []element) ([]hw.Word, error) {
	labels := map[string]hw.Word{}
	offset := hw.Word(0)
	for _, el := range elements {
		if el.IsLabel {
			labels[el.LabelName] = offset
			continue
		}
		offset += hw.Word(len(el.Words)) * 2
	}

	out := make([]hw.Word, 0, offset/2)
	for _, el := range elements {
		if el.IsLabel {
			continue
		}
		for _, c := range el.Words {
			if c.Resolved {
				out = append(out, c.Value)
				continue
			}
			v, ok := labels[c.Tag]
			if !ok {
				return nil, errAt(PhaseResolve, el.Loc, "UnknownLabel: %q", c.Tag)
			}
			out = append(out, v)
		}
	}
	return out, nil
}
