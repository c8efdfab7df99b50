package render

import (
	"fmt"
	"strings"
)

const (
	KindFootnote         Kind = "footnote"
	KindFootnotesSection Kind = "footnotes-section"
)

func footnoteBlocks() []BlockType {
	return []BlockType{
		{
			Kind:   KindFootnote,
			Schema: newSchema(str("content", ""), str("footnoteId", "")),
			Render: renderFootnote,
		},
		{
			Kind:   KindFootnotesSection,
			Schema: newSchema(str("title", "Notes")),
			Render: renderFootnotesSection,
		},
	}
}

// renderFootnote 收集脚注并输出行内引用，空内容不渲染也不占编号。
func renderFootnote(p *Pass, attrs Attributes, _ string) string {
	content := attrs.String("content")
	if strings.TrimSpace(content) == "" {
		return ""
	}
	fn := p.CollectFootnote(attrs.String("footnoteId"), content)
	id := escAttr(fn.ID)
	return fmt.Sprintf(`<sup class="footnote-ref%s"><a href="#%s" id="%s-ref" aria-describedby="%s" data-footnote-ref="%d">%d</a></sup>`,
		classSuffix(attrs), id, id, id, fn.Number, fn.Number)
}

// renderFootnotesSection 输出此前收集的全部脚注并清空列表。
func renderFootnotesSection(p *Pass, attrs Attributes, _ string) string {
	footnotes := p.DrainFootnotes()
	if len(footnotes) == 0 {
		return ""
	}

	title := attrs.String("title")
	var b strings.Builder
	fmt.Fprintf(&b, `<aside%s class="footnotes-section%s" aria-label="%s"><h4>%s</h4><ol class="footnotes-list">`,
		anchorAttr(attrs, "footnotes"), classSuffix(attrs), escAttr(title), escHTML(title))
	for _, fn := range footnotes {
		id := escAttr(fn.ID)
		fmt.Fprintf(&b, `<li id="%s" class="footnote-item"><span class="footnote-number"><a href="#%s-ref" aria-label="Back to reference %d">%d.</a></span><span class="footnote-content">%s</span></li>`,
			id, id, fn.Number, fn.Number, richText(fn.Content))
	}
	b.WriteString(`</ol></aside>`)
	return b.String()
}
