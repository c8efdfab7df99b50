package render

import (
	"fmt"
	"strings"
)

const (
	KindTakeaways           Kind = "takeaways"
	KindTakeawayItem        Kind = "takeaway-item"
	KindGlossary            Kind = "glossary"
	KindGlossaryTerm        Kind = "glossary-term"
	KindTimeline            Kind = "timeline"
	KindTimelineItem        Kind = "timeline-item"
	KindRelatedReading      Kind = "related-reading"
	KindRelatedLink         Kind = "related-link"
	KindKnowDontKnow        Kind = "know-dont-know"
	KindAssumptionsRegister Kind = "assumptions-register"
)

var (
	confidenceLabels = map[string]string{"high": "High", "medium": "Medium", "low": "Low"}
	statusLabels     = map[string]string{
		"untested":    "Untested",
		"validated":   "Validated",
		"invalidated": "Invalidated",
		"partial":     "Partial",
	}
)

func listBlocks() []BlockType {
	return []BlockType{
		{
			Kind:   KindTakeaways,
			Schema: newSchema(str("title", "Key Takeaways")),
			Render: renderTakeaways,
		},
		{
			Kind:   KindTakeawayItem,
			Schema: newSchema(str("heading", ""), str("description", "")),
			Render: renderTakeawayItem,
		},
		{
			Kind:   KindGlossary,
			Schema: newSchema(str("title", "Key Terms")),
			Render: renderGlossary,
		},
		{
			Kind:   KindGlossaryTerm,
			Schema: newSchema(str("term", ""), str("definition", "")),
			Render: renderGlossaryTerm,
		},
		{
			Kind:   KindTimeline,
			Schema: newSchema(str("title", ""), str("orientation", "vertical", "vertical", "horizontal")),
			Render: renderTimeline,
		},
		{
			Kind:   KindTimelineItem,
			Schema: newSchema(str("date", ""), str("title", ""), str("description", "")),
			Render: renderTimelineItem,
		},
		{
			Kind:   KindRelatedReading,
			Schema: newSchema(str("title", "Further Reading")),
			Render: renderRelatedReading,
		},
		{
			Kind:   KindRelatedLink,
			Schema: newSchema(str("url", ""), str("title", ""), str("source", ""), str("description", "")),
			Render: renderRelatedLink,
		},
		{
			Kind:   KindKnowDontKnow,
			Schema: newSchema(list("knowItems"), list("dontKnowItems")),
			Render: renderKnowDontKnow,
		},
		{
			Kind:   KindAssumptionsRegister,
			Schema: newSchema(str("title", "Key Assumptions"), records("assumptions")),
			Render: renderAssumptionsRegister,
		},
	}
}

func renderTakeaways(_ *Pass, attrs Attributes, inner string) string {
	return fmt.Sprintf(`<section%s class="wp-block-takeaways%s"><h2>%s</h2><ol class="takeaways-list">%s</ol></section>`,
		anchorAttr(attrs, "takeaways"), classSuffix(attrs), escHTML(attrs.String("title")), inner)
}

func renderTakeawayItem(_ *Pass, attrs Attributes, _ string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<li class="wp-block-takeaway-item%s"><div class="takeaway-content">`, classSuffix(attrs))
	if heading := attrs.String("heading"); heading != "" {
		fmt.Fprintf(&b, `<h4>%s</h4>`, escHTML(heading))
	}
	if description := attrs.String("description"); description != "" {
		fmt.Fprintf(&b, `<p>%s</p>`, richText(description))
	}
	b.WriteString(`</div></li>`)
	return b.String()
}

func renderGlossary(_ *Pass, attrs Attributes, inner string) string {
	return fmt.Sprintf(`<div%s class="wp-block-glossary glossary%s"><h3 class="glossary-title">%s</h3><dl class="glossary-list">%s</dl></div>`,
		anchorAttr(attrs, ""), classSuffix(attrs), escHTML(attrs.String("title")), inner)
}

func renderGlossaryTerm(_ *Pass, attrs Attributes, _ string) string {
	term := attrs.String("term")
	definition := attrs.String("definition")
	if term == "" && definition == "" {
		return ""
	}
	return fmt.Sprintf(`<div class="wp-block-glossary-term glossary-term%s"><dt class="glossary-term-title">%s</dt><dd class="glossary-term-definition">%s</dd></div>`,
		classSuffix(attrs), escHTML(term), richText(definition))
}

func renderTimeline(_ *Pass, attrs Attributes, inner string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div%s class="wp-block-timeline timeline timeline-%s%s">`,
		anchorAttr(attrs, ""), escAttr(attrs.String("orientation")), classSuffix(attrs))
	if title := attrs.String("title"); title != "" {
		fmt.Fprintf(&b, `<h3 class="timeline-title">%s</h3>`, escHTML(title))
	}
	fmt.Fprintf(&b, `<div class="timeline-events">%s</div></div>`, inner)
	return b.String()
}

func renderTimelineItem(_ *Pass, attrs Attributes, _ string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="wp-block-timeline-item timeline-item%s"><div class="timeline-marker"></div><div class="timeline-content">`, classSuffix(attrs))
	if date := attrs.String("date"); date != "" {
		fmt.Fprintf(&b, `<span class="timeline-date">%s</span>`, escHTML(date))
	}
	if title := attrs.String("title"); title != "" {
		fmt.Fprintf(&b, `<h4 class="timeline-event-title">%s</h4>`, escHTML(title))
	}
	if description := attrs.String("description"); description != "" {
		fmt.Fprintf(&b, `<p class="timeline-description">%s</p>`, richText(description))
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func renderRelatedReading(_ *Pass, attrs Attributes, inner string) string {
	return fmt.Sprintf(`<section%s class="wp-block-related-reading related-reading%s"><h3 class="related-title">%s</h3><div class="related-list">%s</div></section>`,
		anchorAttr(attrs, ""), classSuffix(attrs), escHTML(attrs.String("title")), inner)
}

func renderRelatedLink(_ *Pass, attrs Attributes, _ string) string {
	title := attrs.String("title")
	if title == "" {
		return ""
	}

	tag, linkAttrs := "div", ""
	if href := escURL(attrs.String("url")); href != "" {
		tag = "a"
		linkAttrs = ` href="` + href + `" target="_blank" rel="noopener"`
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<%s%s class="wp-block-related-link related-link%s"><span class="related-link-arrow">→</span><div class="related-link-content"><span class="related-link-title">%s</span>`,
		tag, linkAttrs, classSuffix(attrs), escHTML(title))
	if source := attrs.String("source"); source != "" {
		fmt.Fprintf(&b, `<span class="related-link-source">%s</span>`, escHTML(source))
	}
	if description := attrs.String("description"); description != "" {
		fmt.Fprintf(&b, `<p class="related-link-desc">%s</p>`, richText(description))
	}
	fmt.Fprintf(&b, `</div></%s>`, tag)
	return b.String()
}

func renderKnowDontKnow(_ *Pass, attrs Attributes, _ string) string {
	know := nonEmpty(attrs.Strings("knowItems"))
	dontKnow := nonEmpty(attrs.Strings("dontKnowItems"))
	if len(know) == 0 && len(dontKnow) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s class="wp-block-know-dont-know know-dont-know%s"><div class="kdk-columns">`,
		anchorAttr(attrs, ""), classSuffix(attrs))
	writeKDKColumn(&b, "know", "✓", "What We Know", know)
	writeKDKColumn(&b, "dont-know", "?", "What We Don't Know", dontKnow)
	b.WriteString(`</div></div>`)
	return b.String()
}

func writeKDKColumn(b *strings.Builder, class, icon, title string, items []string) {
	fmt.Fprintf(b, `<div class="kdk-column %s"><h4 class="kdk-title"><span class="kdk-icon">%s</span> %s</h4>`,
		class, icon, escHTML(title))
	if len(items) > 0 {
		b.WriteString(`<ul class="kdk-list">`)
		for _, item := range items {
			fmt.Fprintf(b, `<li>%s</li>`, richText(item))
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</div>`)
}

func renderAssumptionsRegister(_ *Pass, attrs Attributes, _ string) string {
	assumptions := attrs.Records("assumptions")
	if len(assumptions) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s class="wp-block-assumptions-register assumptions-register%s"><h3 class="ar-title">%s</h3><table class="ar-table"><thead><tr><th scope="col">Assumption</th><th scope="col">Confidence</th><th scope="col">Status</th></tr></thead><tbody>`,
		anchorAttr(attrs, ""), classSuffix(attrs), escHTML(attrs.String("title")))
	for _, item := range assumptions {
		text := item.String("text")
		if text == "" {
			continue
		}
		confidence := labelKey(item.String("confidence"), "medium", confidenceLabels)
		status := labelKey(item.String("status"), "untested", statusLabels)
		fmt.Fprintf(&b, `<tr class="ar-row status-%s"><td class="ar-assumption">%s</td><td class="ar-confidence confidence-%s"><span class="confidence-indicator"></span>%s</td><td class="ar-status"><span class="status-badge status-%s">%s</span></td></tr>`,
			status, richText(text), confidence, confidenceLabels[confidence], status, statusLabels[status])
	}
	b.WriteString(`</tbody></table></div>`)
	return b.String()
}

// labelKey 返回 labels 中存在的键，否则回退到 fallback。
func labelKey(value, fallback string, labels map[string]string) string {
	if _, ok := labels[value]; ok {
		return value
	}
	return fallback
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}
