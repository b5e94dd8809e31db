package store

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// segmentDoc is the Mongo document shape for a SegmentRecord: a flat
// struct with bson tags, one collection per table.
type segmentDoc struct {
	RefNum   string         `bson:"ref_num"`
	StoredAt time.Time      `bson:"stored_at"`
	Total    int            `bson:"total"`
	Parts    map[string][]byte `bson:"parts"` // keyed by stringified segment index
}

// MongoSegmentStore persists the inbound segment-assembly table in
// MongoDB, demonstrating that the correlator's persistence contract is
// storage-agnostic: the delivery map lives in Postgres, this table lives
// in Mongo, and both satisfy "no acknowledged write is lost across a
// restart."
type MongoSegmentStore struct {
	coll *mongo.Collection
}

// NewMongoSegmentStore connects to uri and selects database/collection
// "segment_assembly".
func NewMongoSegmentStore(ctx context.Context, uri, database string) (*MongoSegmentStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	coll := client.Database(database).Collection("segment_assembly")
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ref_num", Value: 1}},
	}); err != nil {
		return nil, err
	}
	return &MongoSegmentStore{coll: coll}, nil
}

func toDoc(rec SegmentRecord) segmentDoc {
	parts := make(map[string][]byte, len(rec.Parts))
	for seq, text := range rec.Parts {
		parts[strconv.Itoa(seq)] = text
	}
	return segmentDoc{RefNum: rec.RefNum, StoredAt: rec.StoredAt, Total: rec.Total, Parts: parts}
}

func fromDoc(d segmentDoc) SegmentRecord {
	parts := make(map[int][]byte, len(d.Parts))
	for seq, text := range d.Parts {
		n, err := strconv.Atoi(seq)
		if err != nil {
			continue
		}
		parts[n] = text
	}
	return SegmentRecord{RefNum: d.RefNum, StoredAt: d.StoredAt, Total: d.Total, Parts: parts}
}

func (s *MongoSegmentStore) Put(ctx context.Context, rec SegmentRecord) error {
	doc := toDoc(rec)
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"ref_num": rec.RefNum}, doc, opts)
	return err
}

func (s *MongoSegmentStore) Get(ctx context.Context, refNum string) (SegmentRecord, bool, error) {
	var doc segmentDoc
	err := s.coll.FindOne(ctx, bson.M{"ref_num": refNum}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return SegmentRecord{}, false, nil
	}
	if err != nil {
		return SegmentRecord{}, false, err
	}
	return fromDoc(doc), true, nil
}

func (s *MongoSegmentStore) Delete(ctx context.Context, refNum string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"ref_num": refNum})
	return err
}

func (s *MongoSegmentStore) SweepExpired(ctx context.Context, ttl time.Duration) ([]SegmentRecord, error) {
	cutoff := time.Now().Add(-ttl)
	cur, err := s.coll.Find(ctx, bson.M{"stored_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []segmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"stored_at": bson.M{"$lt": cutoff}}); err != nil {
		return nil, err
	}
	out := make([]SegmentRecord, len(docs))
	for i, d := range docs {
		out[i] = fromDoc(d)
	}
	return out, nil
}
