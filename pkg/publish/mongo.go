package publish

import (
	"context"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	pkgio "github.com/matzehuels/versionsync/pkg/io"
)

// Mongo defaults.
const (
	DefaultMongoDatabase = "versionsync"
	MongoCollection      = "runs"
)

// inserter is the subset of *mongo.Collection used by [Mongo].
type inserter interface {
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// Mongo inserts one document per run, keyed by run id.
type Mongo struct {
	runs       inserter
	disconnect func(context.Context) error
}

// DialMongo connects to the MongoDB deployment at uri.
func DialMongo(ctx context.Context, uri string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.New(errs.ErrCodeConfiguration, "invalid mongodb url: %s", errs.Redact(err.Error()))
	}
	coll := client.Database(mongoDatabase(uri)).Collection(MongoCollection)
	return &Mongo{runs: coll, disconnect: client.Disconnect}, nil
}

// mongoDatabase returns the database named in the URI path, if any.
func mongoDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultMongoDatabase
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return DefaultMongoDatabase
}

// Publish inserts r. Results are stored as an ordered subdocument.
func (p *Mongo) Publish(ctx context.Context, r *Report) error {
	if _, err := p.runs.InsertOne(ctx, reportDocument(r)); err != nil {
		return publishError(err, "mongodb")
	}
	return nil
}

func reportDocument(r *Report) bson.D {
	results := bson.D{}
	if r.Results != nil {
		for _, e := range r.Results.Entries() {
			results = append(results, bson.E{Key: e.Name, Value: pkgio.Value(e.Result)})
		}
	}
	return bson.D{
		{Key: "_id", Value: r.RunID},
		{Key: "started_at", Value: r.StartedAt},
		{Key: "finished_at", Value: r.FinishedAt},
		{Key: "complete", Value: r.Complete},
		{Key: "results", Value: results},
	}
}

// Close disconnects the client.
func (p *Mongo) Close() error {
	if p.disconnect == nil {
		return nil
	}
	return p.disconnect(context.Background())
}

var _ Publisher = (*Mongo)(nil)
