package render

import (
	"fmt"
	"strings"
)

// FootnoteRecord is one footnote collected during a render pass.
type FootnoteRecord struct {
	ID      string
	Number  int
	Content string
}

// Pass holds state scoped to one document render.
type Pass struct {
	footnotes []FootnoteRecord
	ids       map[string]int
}

// NewPass starts an empty render pass.
func NewPass() *Pass {
	return &Pass{ids: make(map[string]int)}
}

// CollectFootnote appends a footnote numbered one past the current count.
// An empty id gets a pass-unique "fn-N" id.
func (p *Pass) CollectFootnote(id, content string) FootnoteRecord {
	id = strings.TrimSpace(id)
	if id == "" {
		id = p.UniqueID("fn")
	}
	record := FootnoteRecord{ID: id, Number: len(p.footnotes) + 1, Content: content}
	p.footnotes = append(p.footnotes, record)
	return record
}

// DrainFootnotes returns the collected footnotes in insertion order and
// empties the list. Later calls in the same pass see only footnotes collected
// after the previous drain.
func (p *Pass) DrainFootnotes() []FootnoteRecord {
	drained := p.footnotes
	p.footnotes = nil
	if drained == nil {
		return []FootnoteRecord{}
	}
	return drained
}

// PendingFootnotes reports how many footnotes wait for a footnotes section.
func (p *Pass) PendingFootnotes() int {
	return len(p.footnotes)
}

// UniqueID returns prefix-N with N counting per prefix within the pass.
func (p *Pass) UniqueID(prefix string) string {
	p.ids[prefix]++
	return fmt.Sprintf("%s-%d", prefix, p.ids[prefix])
}
