package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/versionsync/pkg/pipeline"
)

// Write encodes m in the given format and writes it to w.
func Write(m *pipeline.ResultMap, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(m, w)
	case FormatYAML:
		return WriteYAML(m, w)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteJSON writes m as an indented JSON object with keys in input order.
func WriteJSON(m *pipeline.ResultMap, w io.Writer) error {
	data, err := MarshalJSON(m)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// MarshalJSON returns the indented JSON encoding of m. encoding/json sorts
// map keys, so the object is assembled entry by entry.
func MarshalJSON(m *pipeline.ResultMap) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, e.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, Value(e.Result)); err != nil {
			return nil, fmt.Errorf("service %s: %w", e.Name, err)
		}
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// encodeJSON appends v to buf without escaping the angle brackets of the
// markers.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // trailing newline
	return nil
}

// WriteYAML writes m as a YAML mapping with keys in input order.
func WriteYAML(m *pipeline.ResultMap, w io.Writer) error {
	node, err := yamlNode(m)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func yamlNode(m *pipeline.ResultMap) (*yaml.Node, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m.Entries() {
		var val yaml.Node
		if err := val.Encode(Value(e.Result)); err != nil {
			return nil, fmt.Errorf("service %s: %w", e.Name, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			&val,
		)
	}
	return root, nil
}

// ExportFile writes m to path in the given format. An empty format is
// inferred from the extension.
func ExportFile(m *pipeline.ResultMap, path string, format Format) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := Write(m, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
