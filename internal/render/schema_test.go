package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaResolveFillsDefaults(t *testing.T) {
	reg := DefaultRegistry()
	callout, ok := reg.Lookup("callout")
	require.True(t, ok)

	attrs := callout.Schema.Resolve(Attributes{"type": "bogus", "content": "Body", "extra": 1.0})

	assert.Equal(t, "info", attrs.String("type"))
	assert.True(t, attrs.Bool("showIcon"))
	assert.False(t, attrs.Bool("collapsible"))
	assert.True(t, attrs.Bool("defaultOpen"))
	assert.Equal(t, "Body", attrs.String("content"))
	assert.Equal(t, 1, attrs.Int("extra"))
	_, hasAnchor := attrs["anchor"]
	assert.False(t, hasAnchor)
}

func TestSchemaCheckRejectsWrongShapes(t *testing.T) {
	reg := DefaultRegistry()

	cases := []struct {
		name  string
		kind  string
		attrs Attributes
	}{
		{name: "enum", kind: "callout", attrs: Attributes{"type": "bogus"}},
		{name: "string", kind: "paragraph", attrs: Attributes{"content": 3.0}},
		{name: "number", kind: "section-header", attrs: Attributes{"level": "two"}},
		{name: "bool", kind: "callout", attrs: Attributes{"collapsible": "yes"}},
		{name: "list", kind: "know-dont-know", attrs: Attributes{"knowItems": []interface{}{"a", 2.0}}},
		{name: "records", kind: "assumptions-register", attrs: Attributes{"assumptions": []interface{}{"text"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bt, ok := reg.Lookup(tc.kind)
			require.True(t, ok)
			assert.Error(t, bt.Schema.Check(tc.attrs))
		})
	}

	bt, _ := reg.Lookup("section-header")
	assert.NoError(t, bt.Schema.Check(Attributes{"title": "Intro", "level": 3.0, "unknown": true}))
}
