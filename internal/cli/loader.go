package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/fsrfilter/internal/domain/types"
)

// LoadEvents reads events from path. Files ending in .yaml or .yml are parsed
// as YAML, anything else as JSON; "-" reads JSON from stdin. Either a list
// of events or a single event object is accepted.
func LoadEvents(path string, stdin io.Reader) ([]types.Event, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) ([]types.Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var events []types.Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("decode event list: %w", err)
		}
		return events, nil
	}
	var ev types.Event
	if err := json.Unmarshal(trimmed, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return []types.Event{ev}, nil
}

func decodeYAML(data []byte) ([]types.Event, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var events []types.Event
		if err := root.Decode(&events); err != nil {
			return nil, fmt.Errorf("decode event list: %w", err)
		}
		return events, nil
	}
	var ev types.Event
	if err := root.Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return []types.Event{ev}, nil
}
