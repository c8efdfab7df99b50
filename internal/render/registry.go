package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownBlock is returned by Validate for a block kind that is not registered.
var ErrUnknownBlock = errors.New("unknown block kind")

// Kind names a block type.
type Kind string

// RenderFunc maps resolved attributes and rendered inner content to markup.
type RenderFunc func(p *Pass, attrs Attributes, inner string) string

// BlockType pairs a kind with its schema and render function.
type BlockType struct {
	Kind   Kind
	Schema Schema
	Render RenderFunc
}

// Registry is the closed set of block kinds known to the renderer.
type Registry struct {
	types map[Kind]BlockType
}

// NewRegistry builds a registry from types; a later duplicate replaces an earlier one.
func NewRegistry(types ...BlockType) *Registry {
	r := &Registry{types: make(map[Kind]BlockType, len(types))}
	for _, t := range types {
		r.types[t.Kind] = t
	}
	return r
}

// DefaultRegistry returns every built-in block kind.
func DefaultRegistry() *Registry {
	types := make([]BlockType, 0, 32)
	types = append(types, textBlocks()...)
	types = append(types, footnoteBlocks()...)
	types = append(types, listBlocks()...)
	return NewRegistry(types...)
}

// Lookup resolves a kind. Names may carry a "namespace/" prefix.
func (r *Registry) Lookup(name string) (BlockType, bool) {
	t, ok := r.types[normalizeKind(name)]
	return t, ok
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.types))
	for k := range r.types {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Validate checks every block in doc against the registry and its schema.
func (r *Registry) Validate(doc Document) error {
	return r.validateBlocks(doc.Blocks, "")
}

func (r *Registry) validateBlocks(blocks []Block, path string) error {
	for i, b := range blocks {
		at := fmt.Sprintf("%s/%d", path, i)
		t, ok := r.Lookup(b.Name)
		if !ok {
			return fmt.Errorf("%w %q at %s", ErrUnknownBlock, b.Name, at)
		}
		if err := t.Schema.Check(b.Attributes); err != nil {
			return fmt.Errorf("block %q at %s: %w", t.Kind, at, err)
		}
		if err := r.validateBlocks(b.InnerBlocks, at); err != nil {
			return err
		}
	}
	return nil
}

// Render renders doc in a fresh pass.
func (r *Registry) Render(doc Document) string {
	return r.RenderPass(NewPass(), doc)
}

// RenderPass renders doc top to bottom within p. Inner blocks render before
// the block that contains them; unknown kinds contribute only their inner
// content.
func (r *Registry) RenderPass(p *Pass, doc Document) string {
	return r.renderBlocks(p, doc.Blocks)
}

func (r *Registry) renderBlocks(p *Pass, blocks []Block) string {
	var b strings.Builder
	for _, block := range blocks {
		b.WriteString(r.renderBlock(p, block))
	}
	return b.String()
}

func (r *Registry) renderBlock(p *Pass, block Block) string {
	inner := r.renderBlocks(p, block.InnerBlocks)
	t, ok := r.Lookup(block.Name)
	if !ok {
		return inner
	}
	return t.Render(p, t.Schema.Resolve(block.Attributes), inner)
}

func normalizeKind(name string) Kind {
	name = strings.ToLower(strings.TrimSpace(name))
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return Kind(name)
}
