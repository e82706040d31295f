package segment

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the segment-list artifact persisted between pipeline stages.
type Document struct {
	Language       string    `json:"language,omitempty"`
	LeadingSilence float64   `json:"leading_silence,omitempty"`
	Segments       []Segment `json:"segments"`
}

// Save writes the document as indented JSON at path.
func (d Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal segment document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write segment document: %w", err)
	}
	return nil
}

// Load reads a segment document from path. A bare JSON array (the older
// artifact shape) is accepted and wrapped into a Document.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- paths come from internal job directories
	if err != nil {
		return Document{}, fmt.Errorf("read segment document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err == nil && doc.Segments != nil {
		return doc, nil
	}

	var segs []Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return Document{}, fmt.Errorf("parse segment document %s: %w", path, err)
	}
	return Document{Segments: segs}, nil
}
