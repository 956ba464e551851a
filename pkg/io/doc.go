// Package io encodes and decodes result maps.
//
// # Format
//
// A result map is a single mapping from service name to outcome. Each
// outcome has one of four shapes:
//
//	{
//	  "api":    {"image": "ghcr.io/org/api", "tag": "1.4.2"},
//	  "worker": "<NOT_FOUND>",
//	  "web":    "<RATE_LIMITED>",
//	  "batch":  {"error": "GitHub API returned status 500"}
//	}
//
// Keys appear in the order the services were configured, in both JSON and
// YAML output. Informational fields of [pipeline.ServiceResult] (release,
// extracted version, retry hint) are not part of the format.
//
// # Export
//
// Use [Write] with a [Format] to encode to any io.Writer, or [ExportFile] to
// write a file:
//
//	if err := io.Write(results, os.Stdout, io.FormatYAML); err != nil {
//	    return err
//	}
//
// # Import
//
// [ReadJSON] and [ReadYAML] rebuild a [pipeline.ResultMap] from its encoded
// form, keeping key order; [ImportFile] reads one from disk. Decoded maps
// carry no run id or timestamps.
package io
