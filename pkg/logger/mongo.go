package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// Entry is one log line as stored in MongoDB. Store and notifier lines
// carry request_id, so a request's history can be read back by id.
type Entry struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// MongoSink is an slog.Handler that batches entries into a collection from
// a background goroutine. Handle never blocks: when the queue is full the
// entry is dropped.
type MongoSink struct {
	level  slog.Level
	attrs  []slog.Attr
	prefix string // dotted group path

	shared *mongoShared
}

type mongoShared struct {
	col    *mongo.Collection
	client *mongo.Client
	queue  chan Entry
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// DialMongo connects to uri and starts the writer for db.collection.
func DialMongo(ctx context.Context, uri, db, collection string, level slog.Level) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(4))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	})

	s := &mongoShared{
		col:    col,
		client: client,
		queue:  make(chan Entry, mongoQueueSize),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.drain()
	return &MongoSink{level: level, shared: s}, nil
}

func (h *MongoSink) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *MongoSink) Handle(_ context.Context, r slog.Record) error {
	select {
	case h.shared.queue <- h.entry(r):
	default:
	}
	return nil
}

func (h *MongoSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	for _, a := range attrs {
		c.attrs = append(c.attrs[:len(c.attrs):len(c.attrs)], slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &c
}

func (h *MongoSink) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// entry flattens the handler's attrs and the record's into one document.
func (h *MongoSink) entry(r slog.Record) Entry {
	e := Entry{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}

	add := func(key string, v slog.Value) {
		v = v.Resolve()
		if key == "request_id" {
			e.RequestID = v.String()
			return
		}
		if v.Kind() == slog.KindGroup {
			for _, ga := range v.Group() {
				e.Attrs[key+"."+ga.Key] = ga.Value.Resolve().Any()
			}
			return
		}
		e.Attrs[key] = v.Any()
	}

	for _, a := range h.attrs {
		add(a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(h.prefix+a.Key, a.Value)
		return true
	})
	if len(e.Attrs) == 0 {
		e.Attrs = nil
	}
	return e
}

func (s *mongoShared) drain() {
	defer s.wg.Done()

	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = s.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-s.queue:
			batch = append(batch, e)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
			}
			flush()
			return
		}
	}
}

// Close flushes queued entries and disconnects. Safe to call more than once.
func (h *MongoSink) Close(ctx context.Context) error {
	var err error
	h.shared.closed.Do(func() {
		close(h.shared.done)
		h.shared.wg.Wait()
		err = h.shared.client.Disconnect(ctx)
	})
	return err
}

// ─── fan-out ─────────────────────────────────────────────────────────────────

// Tee sends every record to each handler that accepts its level.
type Tee []slog.Handler

func (t Tee) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t Tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []string
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("logger: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (t Tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(Tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t Tee) WithGroup(name string) slog.Handler {
	out := make(Tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// Also makes the base logger write to h as well as its current output.
func Also(h slog.Handler) {
	L = slog.New(Tee{L.Handler(), h})
	slog.SetDefault(L)
}
