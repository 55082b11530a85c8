// Package assembler rebuilds the header → item → detail / header →
// installment tree from decoded lines in file order.
//
// The assembler is a fold: State is the accumulator and Step is the
// transition. Context states are NoHeader, InHeader and InHeaderAndItem.
// Records are appended to their owners when created, so there is no
// finalization step; whatever context is open at end of input is dropped.
package assembler

import (
	"github.com/praetorian-inc/posjson/pkg/types"
)

// Phase names the context the assembler is in.
type Phase int

const (
	NoHeader Phase = iota
	InHeader
	InHeaderAndItem
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case InHeader:
		return "InHeader"
	case InHeaderAndItem:
		return "InHeaderAndItem"
	default:
		return "NoHeader"
	}
}

// State is the assembler accumulator. The zero value is the initial state.
type State struct {
	// Headers is the output sequence in creation order.
	Headers []*types.HeaderRecord

	header *types.HeaderRecord
	item   *types.LineItemRecord

	// Dropped counts detail lines discarded for lack of any header.
	Dropped int
}

// Phase reports the current context.
func (s *State) Phase() Phase {
	switch {
	case s.header == nil:
		return NoHeader
	case s.item == nil:
		return InHeader
	default:
		return InHeaderAndItem
	}
}

// CurrentHeader returns the open header, or nil.
func (s *State) CurrentHeader() *types.HeaderRecord { return s.header }

// CurrentLineItem returns the open line item, or nil.
func (s *State) CurrentLineItem() *types.LineItemRecord { return s.item }

// Step applies one decoded line of the given kind.
func (s *State) Step(kind types.RecordKind, line types.DecodedLine) {
	switch kind {
	case types.KindHeader:
		s.openHeader(types.NewHeaderRecord(line.Fields))
		s.item = nil

	case types.KindLineItem:
		item := types.NewLineItemRecord(line.Fields)
		if s.header == nil {
			s.openHeader(orphanHeader())
		}
		s.header.LineItems = append(s.header.LineItems, item)
		s.item = item

	case types.KindDetail:
		detail := types.NewDetailRecord(line.Fields)
		switch {
		case s.item != nil:
			s.item.Details = append(s.item.Details, detail)
		case s.header != nil:
			placeholder := types.NewLineItemRecord(nil)
			placeholder.Placeholder = true
			placeholder.Details = append(placeholder.Details, detail)
			s.header.LineItems = append(s.header.LineItems, placeholder)
			s.item = placeholder
		default:
			// No owner at all: the detail is discarded, same as an
			// unknown discriminator.
			s.Dropped++
		}

	case types.KindInstallment:
		inst := types.NewInstallmentRecord(line.Fields)
		if s.header == nil {
			s.openHeader(orphanHeader())
		}
		s.header.Installments = append(s.header.Installments, inst)
	}
}

// Assemble folds decoded lines, in file order, into a fresh state and
// returns the headers. Lines whose discriminator has no layout are skipped.
func Assemble(layouts types.LayoutSet, lines []types.DecodedLine) []*types.HeaderRecord {
	var s State
	for _, line := range lines {
		layout := layouts.Lookup(line.Discriminator)
		if layout == nil {
			continue
		}
		s.Step(layout.EffectiveKind(), line)
	}
	if s.Headers == nil {
		return []*types.HeaderRecord{}
	}
	return s.Headers
}

func (s *State) openHeader(h *types.HeaderRecord) {
	s.Headers = append(s.Headers, h)
	s.header = h
}

func orphanHeader() *types.HeaderRecord {
	h := types.NewHeaderRecord(nil)
	h.Orphan = true
	return h
}
