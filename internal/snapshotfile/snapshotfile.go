// Package snapshotfile reads chat list snapshots from YAML or JSON documents.
//
// A document is either a bare list of cells or a mapping with a "cells" key:
//
//	cells:
//	  - room_id: 1
//	    title: title 0
package snapshotfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// document is the mapping form of a snapshot file.
type document struct {
	ListID string        `mapstructure:"list_id"`
	Cells  []domain.Cell `mapstructure:"cells"`
}

// Load reads the snapshot at path. The format follows the extension
// (.json, otherwise YAML).
func Load(path string) ([]domain.Cell, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	cells, err := Parse(data, strings.ToLower(filepath.Ext(path)) == ".json")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cells, nil
}

// Parse decodes a snapshot document.
func Parse(data []byte, isJSON bool) ([]domain.Cell, error) {
	var raw any
	if isJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	switch v := raw.(type) {
	case nil:
		return []domain.Cell{}, nil
	case []any:
		var cells []domain.Cell
		if err := decode(v, &cells); err != nil {
			return nil, err
		}
		return normalize(cells)
	case map[string]any:
		var doc document
		if err := decode(v, &doc); err != nil {
			return nil, err
		}
		return normalize(doc.Cells)
	}
	return nil, fmt.Errorf("unsupported snapshot document of type %T", raw)
}

func decode(input, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true, // numeric room ids
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	return nil
}

func normalize(cells []domain.Cell) ([]domain.Cell, error) {
	if cells == nil {
		cells = []domain.Cell{}
	}
	for i, c := range cells {
		if c.RoomID == "" {
			return nil, fmt.Errorf("invalid snapshot: cell %d has no room_id", i)
		}
	}
	return cells, nil
}
