package render

import (
	"fmt"
	"strings"
)

const (
	KindParagraph     Kind = "paragraph"
	KindMarkdown      Kind = "markdown"
	KindSectionHeader Kind = "section-header"
	KindPullquote     Kind = "pullquote"
	KindCitation      Kind = "citation"
	KindInsight       Kind = "insight"
	KindSidenote      Kind = "sidenote"
	KindCallout       Kind = "callout"
	KindAside         Kind = "aside"
)

var calloutIcons = map[string]string{
	"info":    `<circle cx="12" cy="12" r="10"/><path d="M12 16v-4M12 8h.01"/>`,
	"warning": `<path d="M10.29 3.86L1.82 18a2 2 0 001.71 3h16.94a2 2 0 001.71-3L13.71 3.86a2 2 0 00-3.42 0z"/><path d="M12 9v4M12 17h.01"/>`,
	"success": `<circle cx="12" cy="12" r="10"/><path d="M9 12l2 2 4-4"/>`,
	"danger":  `<circle cx="12" cy="12" r="10"/><path d="M15 9l-6 6M9 9l6 6"/>`,
	"note":    `<path d="M11 4H4a2 2 0 00-2 2v14a2 2 0 002 2h14a2 2 0 002-2v-7"/><path d="M18.5 2.5a2.121 2.121 0 013 3L12 15l-4 1 1-4 9.5-9.5z"/>`,
	"tip":     `<path d="M9 18h6M10 22h4M12 2v1M12 22v-4a4 4 0 004-4 6 6 0 10-8 0 4 4 0 004 4z"/>`,
}

var calloutTitles = map[string]string{
	"info":    "Information",
	"warning": "Warning",
	"success": "Success",
	"danger":  "Important",
	"note":    "Note",
	"tip":     "Tip",
}

var asideLabels = map[string]string{
	"case-study": "Case Study",
	"example":    "Example",
	"note":       "Note",
	"sidebar":    "Sidebar",
	"definition": "Definition",
	"warning":    "Warning",
}

func textBlocks() []BlockType {
	return []BlockType{
		{
			Kind:   KindParagraph,
			Schema: newSchema(str("content", "")),
			Render: renderParagraph,
		},
		{
			Kind:   KindMarkdown,
			Schema: newSchema(str("source", "")),
			Render: renderMarkdown,
		},
		{
			Kind:   KindSectionHeader,
			Schema: newSchema(str("title", ""), str("number", "01"), num("level", 2)),
			Render: renderSectionHeader,
		},
		{
			Kind:   KindPullquote,
			Schema: newSchema(str("quote", ""), str("citation", ""), str("size", "normal", "normal", "large")),
			Render: renderPullquote,
		},
		{
			Kind:   KindCitation,
			Schema: newSchema(str("quote", ""), str("author", "")),
			Render: renderCitation,
		},
		{
			Kind:   KindInsight,
			Schema: newSchema(str("label", "Key insight"), str("content", "")),
			Render: renderInsight,
		},
		{
			Kind:   KindSidenote,
			Schema: newSchema(str("marker", "*"), str("content", "")),
			Render: renderSidenote,
		},
		{
			Kind: KindCallout,
			Schema: newSchema(
				str("type", "info", "info", "warning", "success", "danger", "note", "tip"),
				str("title", ""),
				str("content", ""),
				boolean("showIcon", true),
				boolean("collapsible", false),
				boolean("defaultOpen", true),
			),
			Render: renderCallout,
		},
		{
			Kind: KindAside,
			Schema: newSchema(
				str("label", ""),
				str("labelType", "none", "none", "case-study", "example", "note", "sidebar", "definition", "warning", "custom"),
				str("outcome", ""),
			),
			Render: renderAside,
		},
	}
}

// anchorAttr renders ` id="..."` from the anchor attribute or fallback.
func anchorAttr(attrs Attributes, fallback string) string {
	anchor := strings.TrimSpace(attrs.String("anchor"))
	if anchor == "" {
		anchor = fallback
	}
	if anchor == "" {
		return ""
	}
	return ` id="` + escAttr(anchor) + `"`
}

// classSuffix renders the author's extra class names with a leading space.
func classSuffix(attrs Attributes) string {
	className := strings.TrimSpace(attrs.String("className"))
	if className == "" {
		return ""
	}
	return " " + escAttr(className)
}

func renderParagraph(_ *Pass, attrs Attributes, _ string) string {
	content := attrs.String("content")
	if strings.TrimSpace(content) == "" {
		return ""
	}
	return fmt.Sprintf(`<p%s class="wp-block-paragraph%s">%s</p>`,
		anchorAttr(attrs, ""), classSuffix(attrs), richText(content))
}

func renderMarkdown(_ *Pass, attrs Attributes, _ string) string {
	source := attrs.String("source")
	if strings.TrimSpace(source) == "" {
		return ""
	}
	return fmt.Sprintf(`<div%s class="wp-block-markdown%s">%s</div>`,
		anchorAttr(attrs, ""), classSuffix(attrs), markdownHTML(source))
}

func renderSectionHeader(_ *Pass, attrs Attributes, _ string) string {
	title := attrs.String("title")
	if title == "" {
		return ""
	}
	level := min(max(attrs.Int("level"), 1), 6)
	return fmt.Sprintf(`<div%s class="wp-block-section-header sectionHead reveal%s"><h%d class="wp-block-heading">%s</h%d><span class="sectionNum">%s</span></div>`,
		anchorAttr(attrs, ""), classSuffix(attrs), level, escHTML(title), level, escHTML(attrs.String("number")))
}

func renderPullquote(_ *Pass, attrs Attributes, _ string) string {
	quote := attrs.String("quote")
	if quote == "" {
		return ""
	}
	sizeClass := ""
	if attrs.String("size") == "large" {
		sizeClass = " pullquote--large"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<blockquote%s class="wp-block-pullquote pullquote reveal%s%s"><p>%s</p>`,
		anchorAttr(attrs, ""), sizeClass, classSuffix(attrs), richText(quote))
	if citation := attrs.String("citation"); citation != "" {
		fmt.Fprintf(&b, `<cite>— %s</cite>`, escHTML(citation))
	}
	b.WriteString(`</blockquote>`)
	return b.String()
}

func renderCitation(_ *Pass, attrs Attributes, _ string) string {
	quote := attrs.String("quote")
	if quote == "" {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s class="wp-block-citation citation reveal%s"><blockquote class="wp-block-quote"><p>%s</p></blockquote>`,
		anchorAttr(attrs, ""), classSuffix(attrs), richText(quote))
	if author := attrs.String("author"); author != "" {
		fmt.Fprintf(&b, `<div class="author">— %s</div>`, escHTML(author))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func renderInsight(_ *Pass, attrs Attributes, _ string) string {
	return fmt.Sprintf(`<div%s class="wp-block-insight insightBox reveal%s"><div class="label">%s</div><div class="insightContent">%s</div></div>`,
		anchorAttr(attrs, ""), classSuffix(attrs), escHTML(attrs.String("label")), richText(attrs.String("content")))
}

func renderSidenote(p *Pass, attrs Attributes, _ string) string {
	content := attrs.String("content")
	if content == "" {
		return ""
	}
	id := p.UniqueID("sidenote")
	return fmt.Sprintf(`<span class="wp-block-sidenote sidenote-wrapper%s"><button type="button" class="sidenote-ref" aria-describedby="%s" aria-expanded="false">%s</button><span id="%s" class="sidenote" role="note">%s</span></span>`,
		classSuffix(attrs), escAttr(id), escHTML(attrs.String("marker")), escAttr(id), richText(content))
}

func renderCallout(_ *Pass, attrs Attributes, _ string) string {
	content := attrs.String("content")
	if content == "" {
		return ""
	}

	kind := attrs.String("type")
	icon, ok := calloutIcons[kind]
	if !ok {
		kind = "info"
		icon = calloutIcons[kind]
	}
	iconSVG := `<span class="callout__icon" aria-hidden="true"><svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">` + icon + `</svg></span>`

	title := attrs.String("title")
	label := title
	if label == "" {
		label = calloutTitles[kind]
	}
	showIcon := attrs.Bool("showIcon")

	var b strings.Builder
	if attrs.Bool("collapsible") {
		open := ""
		if attrs.Bool("defaultOpen") {
			open = " open"
		}
		fmt.Fprintf(&b, `<details%s class="wp-block-callout callout callout--%s callout--collapsible%s"%s><summary class="callout__header">`,
			anchorAttr(attrs, ""), escAttr(kind), classSuffix(attrs), open)
		if showIcon {
			b.WriteString(iconSVG)
		}
		fmt.Fprintf(&b, `<span class="callout__title">%s</span></summary><div class="callout__content">%s</div></details>`,
			escHTML(label), richText(content))
		return b.String()
	}

	fmt.Fprintf(&b, `<div%s class="wp-block-callout callout callout--%s%s" role="note" aria-label="%s">`,
		anchorAttr(attrs, ""), escAttr(kind), classSuffix(attrs), escAttr(label))
	if showIcon || title != "" {
		b.WriteString(`<div class="callout__header">`)
		if showIcon {
			b.WriteString(iconSVG)
		}
		if title != "" {
			fmt.Fprintf(&b, `<span class="callout__title">%s</span>`, escHTML(title))
		}
		b.WriteString(`</div>`)
	}
	fmt.Fprintf(&b, `<div class="callout__content">%s</div></div>`, richText(content))
	return b.String()
}

func renderAside(_ *Pass, attrs Attributes, inner string) string {
	labelType := attrs.String("labelType")
	display := asideLabels[labelType]
	if labelType == "custom" {
		display = attrs.String("label")
	}
	typeClass := ""
	if labelType != "" && labelType != "none" {
		typeClass = " aside-" + escAttr(labelType)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<aside%s class="wp-block-aside aside%s%s">`, anchorAttr(attrs, ""), typeClass, classSuffix(attrs))
	if display != "" {
		fmt.Fprintf(&b, `<div class="aside-label">%s</div>`, escHTML(display))
	}
	fmt.Fprintf(&b, `<div class="aside-content">%s</div>`, inner)
	if outcome := attrs.String("outcome"); outcome != "" {
		fmt.Fprintf(&b, `<div class="aside-outcome">Result: <strong>%s</strong></div>`, escHTML(outcome))
	}
	b.WriteString(`</aside>`)
	return b.String()
}
