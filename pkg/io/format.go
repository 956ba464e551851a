package io

import (
	"strings"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/pipeline"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Markers used for outcomes that carry no data.
const (
	NotFoundMarker    = "<NOT_FOUND>"
	RateLimitedMarker = "<RATE_LIMITED>"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errs.New(errs.ErrCodeConfiguration, "unsupported output format %q (must be json or yaml)", s)
	}
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

type found struct {
	Image string `json:"image" yaml:"image"`
	Tag   string `json:"tag" yaml:"tag"`
}

type failure struct {
	Error string `json:"error" yaml:"error"`
}

// Value returns the value encoded for r: a struct with image and tag, a
// marker string, or a struct with an error message.
func Value(r pipeline.ServiceResult) any {
	switch r.Kind {
	case pipeline.KindFound:
		return found{Image: r.Image, Tag: r.Tag}
	case pipeline.KindNotFound:
		return NotFoundMarker
	case pipeline.KindRateLimited:
		return RateLimitedMarker
	default:
		return failure{Error: r.Message}
	}
}

// fromMarker maps a bare string outcome back to a result.
func fromMarker(name, s string) (pipeline.ServiceResult, error) {
	switch s {
	case NotFoundMarker:
		return pipeline.NotFound(""), nil
	case RateLimitedMarker:
		return pipeline.RateLimited(0), nil
	default:
		return pipeline.ServiceResult{}, errs.New(errs.ErrCodeMalformed, "service %q: unknown marker %q", name, s)
	}
}

// fromObject maps an object outcome back to a result.
func fromObject(name string, image, tag, msg *string) (pipeline.ServiceResult, error) {
	switch {
	case msg != nil && image == nil && tag == nil:
		return pipeline.Failed(*msg), nil
	case msg == nil && image != nil && tag != nil:
		return pipeline.Found(*image, *tag), nil
	default:
		return pipeline.ServiceResult{}, errs.New(errs.ErrCodeMalformed, "service %q: want {image, tag} or {error}", name)
	}
}
