// Package publish delivers the results of a run to an external sink.
//
// A sink is chosen by URL:
//
//   - "" : [Null], nothing is published
//   - "path/to/report.json" or "file:///path" : [File], the report as JSON
//   - "redis://host:6379/0" : [Redis], SET versionsync:latest and PUBLISH on
//     versionsync:runs
//   - "mongodb://host:27017/db" : [Mongo], one document per run in the runs
//     collection (database "versionsync" unless the URL names one)
//
// Usage:
//
//	pub, err := publish.Open(ctx, url)
//	if err != nil {
//	    return err
//	}
//	defer pub.Close()
//	err = pub.Publish(ctx, publish.NewReport(results))
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	pkgio "github.com/matzehuels/versionsync/pkg/io"
	"github.com/matzehuels/versionsync/pkg/pipeline"
)

// Publisher sends reports to a sink.
type Publisher interface {
	// Publish delivers one run's report.
	Publish(ctx context.Context, r *Report) error

	// Close releases connections held by the publisher.
	Close() error
}

// Report is the published form of a run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Complete is false when the run was cancelled before every service
	// had a result.
	Complete bool

	Results *pipeline.ResultMap
}

// NewReport builds a report from a finished run.
func NewReport(m *pipeline.ResultMap) *Report {
	return &Report{
		RunID:      m.RunID(),
		StartedAt:  m.StartedAt(),
		FinishedAt: m.FinishedAt(),
		Complete:   m.Complete(),
		Results:    m,
	}
}

// MarshalJSON encodes the report with its results in input order.
func (r *Report) MarshalJSON() ([]byte, error) {
	results := []byte("{}")
	if r.Results != nil {
		var err error
		if results, err = pkgio.MarshalJSON(r.Results); err != nil {
			return nil, err
		}
	}
	header, err := json.Marshal(struct {
		RunID      string    `json:"run_id"`
		StartedAt  time.Time `json:"started_at"`
		FinishedAt time.Time `json:"finished_at"`
		Complete   bool      `json:"complete"`
	}{r.RunID, r.StartedAt, r.FinishedAt, r.Complete})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(header[:len(header)-1])
	buf.WriteString(`,"results":`)
	buf.Write(results)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Open returns the publisher for rawURL. The URL is never included in
// errors unredacted, since it may carry a password.
func Open(ctx context.Context, rawURL string) (Publisher, error) {
	if rawURL == "" {
		return NewNull(), nil
	}
	scheme := ""
	if i := strings.Index(rawURL, "://"); i > 0 {
		scheme = strings.ToLower(rawURL[:i])
	}

	switch scheme {
	case "":
		return NewFile(rawURL), nil
	case "file":
		u, err := url.Parse(rawURL)
		if err != nil || u.Path == "" {
			return nil, errs.New(errs.ErrCodeConfiguration, "invalid publish url %q", errs.Redact(rawURL))
		}
		return NewFile(u.Path), nil
	case "redis", "rediss":
		return DialRedis(rawURL)
	case "mongodb", "mongodb+srv":
		return DialMongo(ctx, rawURL)
	default:
		return nil, errs.New(errs.ErrCodeConfiguration, "unsupported publish scheme %q (want file, redis or mongodb)", scheme)
	}
}

// publishError reports a sink failure with credentials removed.
func publishError(err error, sink string) error {
	return errs.New(errs.ErrCodeTransient, "publish to %s: %s", sink, errs.Redact(err.Error()))
}
