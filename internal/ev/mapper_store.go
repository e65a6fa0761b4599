package ev

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MappingEntry is one persisted expansion mapping.
type MappingEntry struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// MappingDocument is the on-disk shape of the mapping store: manual
// overrides and auto-generated entries, each keyed by expansion ID.
type MappingDocument struct {
	Version         int                  `json:"version"`
	LastUpdated     string               `json:"lastUpdated"`
	ManualOverrides map[int]MappingEntry `json:"manualOverrides"`
	AutoGenerated   map[int]MappingEntry `json:"autoGenerated"`
}

// MappingStore persists expansion mappings as a JSON document. Writes go
// through a temporary file and rename so an interrupted write never leaves
// a half-written store behind.
type MappingStore struct {
	path string
}

// NewMappingStore creates a store at the given file path.
func NewMappingStore(path string) *MappingStore {
	return &MappingStore{path: path}
}

// Path returns the store's file path.
func (s *MappingStore) Path() string {
	return s.path
}

// Load reads the mapping document. A missing file is not an error and
// returns a nil document; an unreadable or malformed file is fatal.
func (s *MappingStore) Load() (*MappingDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mapping store: %w", err)
	}

	var doc MappingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedRuleError{
			Store:  "expansion mappings",
			Reason: err.Error(),
		}
	}

	for id, entry := range doc.ManualOverrides {
		if entry.Code == "" {
			return nil, &MalformedRuleError{
				Store:  "expansion mappings",
				Key:    fmt.Sprintf("manualOverrides/%d", id),
				Reason: "missing set code",
			}
		}
	}
	for id, entry := range doc.AutoGenerated {
		if entry.Code == "" {
			return nil, &MalformedRuleError{
				Store:  "expansion mappings",
				Key:    fmt.Sprintf("autoGenerated/%d", id),
				Reason: "missing set code",
			}
		}
		if entry.Confidence < 0 || entry.Confidence > 1 {
			return nil, &MalformedRuleError{
				Store:  "expansion mappings",
				Key:    fmt.Sprintf("autoGenerated/%d", id),
				Reason: fmt.Sprintf("confidence %v out of range", entry.Confidence),
			}
		}
	}

	return &doc, nil
}

// Save writes the full mapping table, split into manual and auto sections.
func (s *MappingStore) Save(mappings []ExpansionMapping) error {
	doc := MappingDocument{
		Version:         1,
		LastUpdated:     time.Now().UTC().Format(time.RFC3339),
		ManualOverrides: make(map[int]MappingEntry),
		AutoGenerated:   make(map[int]MappingEntry),
	}

	for _, mapping := range mappings {
		entry := MappingEntry{
			Code:       mapping.SetCode,
			Name:       mapping.SetName,
			Confidence: mapping.Confidence,
		}
		if mapping.Source == SourceManual {
			doc.ManualOverrides[mapping.ExpansionID] = entry
		} else {
			doc.AutoGenerated[mapping.ExpansionID] = entry
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mapping store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create mapping store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write mapping store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace mapping store: %w", err)
	}
	return nil
}
