package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PingTimeout bounds a single health probe.
const PingTimeout = 5 * time.Second

type PoolStats struct {
	TotalConns    int32  `json:"total_conns"`
	IdleConns     int32  `json:"idle_conns"`
	AcquiredConns int32  `json:"acquired_conns"`
	MaxConns      int32  `json:"max_conns"`
	AcquireWait   string `json:"acquire_wait"`
}

func statsOf(pool *pgxpool.Pool) *PoolStats {
	s := pool.Stat()
	return &PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
		AcquireWait:   s.AcquireDuration().String(),
	}
}

type HealthReport struct {
	Status string     `json:"status"`
	Schema string     `json:"schema,omitempty"`
	Error  string     `json:"error,omitempty"`
	Pool   *PoolStats `json:"pool,omitempty"`
}

// Pinger is the part of a pool the health probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe pings p and builds the report body with its HTTP status.
func Probe(ctx context.Context, p Pinger, schema string) (HealthReport, int) {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	report := HealthReport{Status: "healthy", Schema: schema}
	if err := p.Ping(ctx); err != nil {
		return HealthReport{Status: "unhealthy", Schema: schema, Error: err.Error()}, http.StatusServiceUnavailable
	}
	if pool, ok := p.(*pgxpool.Pool); ok {
		report.Pool = statsOf(pool)
	}
	return report, http.StatusOK
}

// HealthHandler serves Probe for the registry database.
func HealthHandler(p Pinger, schema string) echo.HandlerFunc {
	return func(c echo.Context) error {
		report, code := Probe(c.Request().Context(), p, schema)
		return c.JSON(code, report)
	}
}
