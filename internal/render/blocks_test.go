package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func renderOne(name string, attrs Attributes, inner ...Block) string {
	return DefaultRegistry().Render(Document{Blocks: []Block{{Name: name, Attributes: attrs, InnerBlocks: inner}}})
}

func TestRenderEscapesText(t *testing.T) {
	html := renderOne("section-header", Attributes{"title": `<b>"Intro"</b>`, "level": 9.0})
	assert.Contains(t, html, `<h6 class="wp-block-heading">&lt;b&gt;&#34;Intro&#34;&lt;/b&gt;</h6>`)
	assert.Contains(t, html, `<span class="sectionNum">01</span>`)

	html = renderOne("paragraph", Attributes{"content": `safe <em>text</em><script>alert(1)</script>`})
	assert.Contains(t, html, "<em>text</em>")
	assert.NotContains(t, html, "<script")
}

func TestRenderParagraphSkipsEmpty(t *testing.T) {
	assert.Empty(t, renderOne("paragraph", Attributes{"content": "   "}))
	assert.Empty(t, renderOne("paragraph", nil))
}

func TestRenderMarkdown(t *testing.T) {
	html := renderOne("markdown", Attributes{"source": "# Title\n\nSome **bold** text"})
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestRenderCalloutVariants(t *testing.T) {
	html := renderOne("callout", Attributes{"type": "warning", "content": "Careful"})
	assert.Contains(t, html, `class="wp-block-callout callout callout--warning"`)
	assert.Contains(t, html, `aria-label="Warning"`)
	assert.Contains(t, html, `callout__icon`)

	html = renderOne("callout", Attributes{"type": "tip", "content": "Hint", "collapsible": true, "defaultOpen": false, "showIcon": false})
	assert.Contains(t, html, `<details class="wp-block-callout callout callout--tip callout--collapsible">`)
	assert.Contains(t, html, `<span class="callout__title">Tip</span>`)
	assert.NotContains(t, html, "callout__icon")

	assert.Empty(t, renderOne("callout", Attributes{"type": "info"}))
}

func TestRenderSidenoteIDsArePassUnique(t *testing.T) {
	doc := Document{Blocks: []Block{
		{Name: "sidenote", Attributes: Attributes{"content": "a"}},
		{Name: "sidenote", Attributes: Attributes{"content": "b", "marker": "†"}},
	}}
	html := DefaultRegistry().Render(doc)
	assert.Contains(t, html, `id="sidenote-1"`)
	assert.Contains(t, html, `id="sidenote-2"`)
	assert.Contains(t, html, `>†</button>`)
}

func TestRenderRelatedLinkDropsUnsafeURL(t *testing.T) {
	html := renderOne("related-link", Attributes{"title": "Read", "url": "javascript:alert(1)"})
	assert.Contains(t, html, `<div class="wp-block-related-link related-link">`)
	assert.NotContains(t, html, "javascript")

	html = renderOne("related-link", Attributes{"title": "Read", "url": "https://example.com/a?b=1&c=2", "source": "Example"})
	assert.Contains(t, html, `<a href="https://example.com/a?b=1&amp;c=2" target="_blank" rel="noopener"`)
	assert.Contains(t, html, `<span class="related-link-source">Example</span>`)

	assert.Empty(t, renderOne("related-link", Attributes{"url": "https://example.com"}))
}

func TestRenderListContainers(t *testing.T) {
	html := renderOne("takeaways", nil, Block{Name: "takeaway-item", Attributes: Attributes{"heading": "One", "description": "Why"}})
	assert.Equal(t, `<section id="takeaways" class="wp-block-takeaways"><h2>Key Takeaways</h2><ol class="takeaways-list"><li class="wp-block-takeaway-item"><div class="takeaway-content"><h4>One</h4><p>Why</p></div></li></ol></section>`, html)

	html = renderOne("glossary", Attributes{"className": "compact"}, Block{Name: "glossary-term", Attributes: Attributes{"term": "API"}})
	assert.Contains(t, html, `class="wp-block-glossary glossary compact"`)
	assert.Contains(t, html, `<dt class="glossary-term-title">API</dt>`)

	html = renderOne("timeline", Attributes{"orientation": "horizontal", "title": "History"}, Block{Name: "timeline-item", Attributes: Attributes{"date": "1999"}})
	assert.Contains(t, html, "timeline-horizontal")
	assert.Contains(t, html, `<span class="timeline-date">1999</span>`)
}

func TestRenderKnowDontKnow(t *testing.T) {
	assert.Empty(t, renderOne("know-dont-know", Attributes{"knowItems": []interface{}{"", " "}}))

	html := renderOne("know-dont-know", Attributes{"knowItems": []interface{}{"Fact"}})
	assert.Contains(t, html, "<li>Fact</li>")
	assert.Contains(t, html, "What We Don&#39;t Know")
}

func TestRenderAssumptionsRegister(t *testing.T) {
	assert.Empty(t, renderOne("assumptions-register", nil))

	html := renderOne("assumptions-register", Attributes{"assumptions": []interface{}{
		map[string]interface{}{"text": "Demand grows", "confidence": "high", "status": "validated"},
		map[string]interface{}{"text": "Costs fall"},
		map[string]interface{}{"text": ""},
	}})
	assert.Contains(t, html, `<tr class="ar-row status-validated">`)
	assert.Contains(t, html, `confidence-high"><span class="confidence-indicator"></span>High`)
	assert.Contains(t, html, `<tr class="ar-row status-untested">`)
	assert.Contains(t, html, `Medium`)
	assert.Equal(t, 2, strings.Count(html, `class="ar-row`))
}

func TestRenderUnknownKindKeepsInnerContent(t *testing.T) {
	html := renderOne("core/group", nil, Block{Name: "paragraph", Attributes: Attributes{"content": "Inside"}})
	assert.Equal(t, `<p class="wp-block-paragraph">Inside</p>`, html)
}
