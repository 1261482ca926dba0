package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SectorPulse/internal/domain/models"
	"SectorPulse/internal/domain/repository"
	pkgch "SectorPulse/pkg/clickhouse"
	xhttp "SectorPulse/pkg/http"
	pkgkafka "SectorPulse/pkg/kafka"
	"SectorPulse/pkg/logger"
)

// HTTPSink posts fired signals to the sector-map signals endpoint.
type HTTPSink struct {
	http *xhttp.Client
	url  string
	key  string
	log  *logger.Logger
}

// NewHTTPSink creates an HTTP signal-history sink.
func NewHTTPSink(url, key string, timeout time.Duration, log *logger.Logger) repository.SignalSink {
	return &HTTPSink{
		http: xhttp.NewClient(xhttp.WithTimeout(timeout)),
		url:  url,
		key:  key,
		log:  log,
	}
}

func (s *HTTPSink) Record(ctx context.Context, sig *models.Signal) {
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.url,
		Body:   sig,
	}
	if s.key != "" {
		opts.QueryParams = map[string]string{"key": s.key}
	}
	if err := s.http.SendAndParse(ctx, opts, nil); err != nil {
		s.log.Warn("signal history post failed",
			logger.String("type", sig.Type),
			logger.Error(err))
	}
}

func (s *HTTPSink) Close() error { return nil }

// KafkaSink publishes fired signals to a Kafka topic, keyed by signal type
// so consumers can partition by category.
type KafkaSink struct {
	producer *pkgkafka.Producer
	topic    string
	log      *logger.Logger
}

// NewKafkaSink creates a Kafka signal-history sink.
func NewKafkaSink(producer *pkgkafka.Producer, topic string, log *logger.Logger) repository.SignalSink {
	return &KafkaSink{producer: producer, topic: topic, log: log}
}

func (s *KafkaSink) Record(ctx context.Context, sig *models.Signal) {
	if err := s.producer.Publish(ctx, s.topic, []byte(sig.Type), sig); err != nil {
		s.log.Warn("signal history publish failed",
			logger.String("type", sig.Type),
			logger.Error(err))
	}
}

func (s *KafkaSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

// ClickHouseSink inserts fired signals into a ClickHouse table. It owns the
// client and closes it on shutdown.
type ClickHouseSink struct {
	client *pkgch.Client
	db     *sql.DB
	table  string
	log    *logger.Logger
}

// NewClickHouseSink creates a ClickHouse signal-history sink.
func NewClickHouseSink(client *pkgch.Client, table string, log *logger.Logger) repository.SignalSink {
	return &ClickHouseSink{client: client, db: client.DB(), table: table, log: log}
}

// SignalSchema returns idempotent DDL for the signal-history table.
func SignalSchema(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts DateTime DEFAULT now(),
			type LowCardinality(String),
			token String,
			sector String,
			change_24h Float64,
			change_7d Float64,
			sector_avg Float64,
			alpha Float64,
			price Float64,
			mcap Float64,
			reason String
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(ts)
		ORDER BY (type, ts)`, table),
	}
}

func (s *ClickHouseSink) Record(ctx context.Context, sig *models.Signal) {
	q := fmt.Sprintf("INSERT INTO %s (ts, type, token, sector, change_24h, change_7d, sector_avg, alpha, price, mcap, reason) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		time.Now().UTC(),
		sig.Type,
		sig.Token,
		sig.Sector,
		sig.Change24h,
		sig.Change7d,
		sig.SectorAvg,
		sig.Alpha,
		sig.Price,
		sig.MCap,
		sig.Reason,
	)
	if err != nil {
		s.log.Warn("signal history insert failed",
			logger.String("type", sig.Type),
			logger.Error(err))
	}
}

func (s *ClickHouseSink) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// NopSink discards signals. Used when history is disabled.
type NopSink struct{}

func (NopSink) Record(context.Context, *models.Signal) {}
func (NopSink) Close() error                           { return nil }
