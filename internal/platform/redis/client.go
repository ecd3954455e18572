// Package redis connects the shared Redis client used by the settlement
// ledger and the request quotas.
package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"ria/internal/platform/config"
)

type Client struct {
	*redis.Client
}

// New parses cfg.URL, applies the pool overrides and pings once. It returns
// a nil client without error when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig, reg prometheus.Registerer) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if reg != nil {
		if err := reg.Register(newPoolCollector(rdb)); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("register redis pool metrics: %w", err)
		}
	}
	return &Client{Client: rdb}, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// poolCollector reads pool statistics at scrape time.
type poolCollector struct {
	stats func() *redis.PoolStats

	hits, misses, timeouts, stale *prometheus.Desc
	total, idle                   *prometheus.Desc
}

func newPoolCollector(rdb *redis.Client) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("ria_redis_pool_"+name, help, nil, nil)
	}
	return &poolCollector{
		stats:    rdb.PoolStats,
		hits:     desc("hits_total", "Connections reused from the pool."),
		misses:   desc("misses_total", "Connection requests the pool could not serve from idle."),
		timeouts: desc("timeouts_total", "Connection requests that timed out waiting for the pool."),
		stale:    desc("stale_conns_total", "Stale connections removed from the pool."),
		total:    desc("conns", "Connections currently held by the pool."),
		idle:     desc("idle_conns", "Idle connections currently held by the pool."),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.hits, c.misses, c.timeouts, c.stale, c.total, c.idle} {
		ch <- d
	}
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.stale, prometheus.CounterValue, float64(s.StaleConns))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns))
}
