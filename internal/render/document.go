package render

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Block is one node of a serialized document.
type Block struct {
	Name        string     `json:"name"`
	Attributes  Attributes `json:"attributes,omitempty"`
	InnerBlocks []Block    `json:"innerBlocks,omitempty"`
}

// Document is the ordered top-level block list of one entry.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// ParseDocument decodes a stored document. Both a bare block array and an
// object with a "blocks" key are accepted; empty input is an empty document.
func ParseDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, nil
	}

	if trimmed[0] == '[' {
		var blocks []Block
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return Document{}, fmt.Errorf("decode block list: %w", err)
		}
		return Document{Blocks: blocks}, nil
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Marshal encodes the document in its stored form.
func (d Document) Marshal() ([]byte, error) {
	if d.Blocks == nil {
		d.Blocks = []Block{}
	}
	return json.Marshal(d)
}
