package io

import (
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/pipeline"
)

type jsonObject struct {
	Image *string `json:"image"`
	Tag   *string `json:"tag"`
	Error *string `json:"error"`
}

// ReadJSON decodes a JSON result map from r, keeping key order.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*pipeline.ResultMap, error) {
	dec := json.NewDecoder(r)
	if tok, err := dec.Token(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformed, err, "decode results")
	} else if tok != json.Delim('{') {
		return nil, errs.New(errs.ErrCodeMalformed, "results must be a JSON object")
	}

	var entries []pipeline.Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeMalformed, err, "decode results")
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errs.Wrap(errs.ErrCodeMalformed, err, "service %q", name)
		}
		res, err := decodeJSONOutcome(name, raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, pipeline.Entry{Name: name, Result: res})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformed, err, "decode results")
	}
	return pipeline.NewResultMap("", entries...), nil
}

func decodeJSONOutcome(name string, raw json.RawMessage) (pipeline.ServiceResult, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return fromMarker(name, s)
	}
	var obj jsonObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return pipeline.ServiceResult{}, errs.Wrap(errs.ErrCodeMalformed, err, "service %q", name)
	}
	return fromObject(name, obj.Image, obj.Tag, obj.Error)
}

type yamlObject struct {
	Image *string `yaml:"image"`
	Tag   *string `yaml:"tag"`
	Error *string `yaml:"error"`
}

// ReadYAML decodes a YAML result map from r, keeping key order.
func ReadYAML(r io.Reader) (*pipeline.ResultMap, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformed, err, "decode results")
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errs.New(errs.ErrCodeMalformed, "results must be a YAML mapping")
	}

	entries := make([]pipeline.Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, val := root.Content[i].Value, root.Content[i+1]
		var (
			res pipeline.ServiceResult
			err error
		)
		switch val.Kind {
		case yaml.ScalarNode:
			res, err = fromMarker(name, val.Value)
		case yaml.MappingNode:
			var obj yamlObject
			if err = val.Decode(&obj); err == nil {
				res, err = fromObject(name, obj.Image, obj.Tag, obj.Error)
			}
		default:
			err = errs.New(errs.ErrCodeMalformed, "service %q: unexpected %s", name, kindName(val.Kind))
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, pipeline.Entry{Name: name, Result: res})
	}
	return pipeline.NewResultMap("", entries...), nil
}

// Read decodes a result map in the given format.
func Read(r io.Reader, format Format) (*pipeline.ResultMap, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return nil, errs.New(errs.ErrCodeConfiguration, "unsupported results format %q", format)
	}
}

// ImportFile reads a result map from path. An empty format is inferred from
// the file extension.
func ImportFile(path string, format Format) (*pipeline.ResultMap, error) {
	if format == "" {
		format = FormatFromPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "open results")
	}
	defer f.Close()
	return Read(f, format)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}
