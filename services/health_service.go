package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"schooladmin_go/config"
	"schooladmin_go/database"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthCritical = "critical"

	serviceName    = "schooladmin-api"
	serviceVersion = "1.0.0"
	probeTimeout   = 1500 * time.Millisecond
)

// HealthService probes the dependencies behind the /health endpoint.
// MySQL down is critical; Redis down only degrades, the application
// falls back to direct database writes without it.
type HealthService struct {
	startTime time.Time
}

func NewHealthService() *HealthService {
	return &HealthService{startTime: time.Now()}
}

// HealthReport is the /health response body.
type HealthReport struct {
	Status      string        `json:"status"`
	Service     string        `json:"service"`
	Version     string        `json:"version"`
	Environment string        `json:"environment"`
	Time        time.Time     `json:"time"`
	Uptime      string        `json:"uptime"`
	Checks      []HealthCheck `json:"checks"`
	Runtime     RuntimeInfo   `json:"runtime"`
}

// HealthCheck is the probe result for one dependency.
type HealthCheck struct {
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	LatencyMs int64      `json:"latency_ms"`
	Error     string     `json:"error,omitempty"`
	Pool      *PoolStats `json:"pool,omitempty"`
}

// PoolStats mirrors the SQL connection pool counters.
type PoolStats struct {
	Open    int   `json:"open"`
	InUse   int   `json:"in_use"`
	Idle    int   `json:"idle"`
	MaxOpen int   `json:"max_open"`
	Waits   int64 `json:"waits"`
}

// RuntimeInfo is a small process snapshot for diagnostics.
type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapBytes  uint64 `json:"heap_bytes"`
}

// GetHealthReport probes MySQL and Redis and assembles the report.
func (s *HealthService) GetHealthReport() HealthReport {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	env := "unknown"
	if config.AppConfig != nil && strings.TrimSpace(config.AppConfig.AppEnv) != "" {
		env = config.AppConfig.AppEnv
	}

	report := HealthReport{
		Status:      healthOK,
		Service:     serviceName,
		Version:     serviceVersion,
		Environment: env,
		Time:        time.Now().UTC(),
		Uptime:      formatUptime(time.Since(s.startTime)),
	}

	db := s.checkDatabase(ctx)
	report.Checks = append(report.Checks, db)
	if db.Status != healthOK {
		report.Status = healthCritical
	}

	rd := s.checkRedis(ctx)
	report.Checks = append(report.Checks, rd)
	if rd.Status == healthDegraded && report.Status == healthOK {
		report.Status = healthDegraded
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.Runtime = RuntimeInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
	}

	return report
}

// HTTPStatusForOverall maps the report status to a response code.
// Degraded still answers 200: the API works without Redis.
func (s *HealthService) HTTPStatusForOverall(status string) int {
	if status == healthCritical {
		return 503
	}
	return 200
}

func (s *HealthService) checkDatabase(ctx context.Context) HealthCheck {
	check := HealthCheck{Name: "mysql"}

	if database.DB == nil {
		check.Status = healthCritical
		check.Error = "database connection not initialised"
		return check
	}
	sqlDB, err := database.DB.DB()
	if err != nil {
		check.Status = healthCritical
		check.Error = err.Error()
		return check
	}

	start := time.Now()
	err = sqlDB.PingContext(ctx)
	check.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		check.Status = healthCritical
		check.Error = err.Error()
		return check
	}

	stats := sqlDB.Stats()
	check.Status = healthOK
	check.Pool = &PoolStats{
		Open:    stats.OpenConnections,
		InUse:   stats.InUse,
		Idle:    stats.Idle,
		MaxOpen: stats.MaxOpenConnections,
		Waits:   stats.WaitCount,
	}
	return check
}

func (s *HealthService) checkRedis(ctx context.Context) HealthCheck {
	check := HealthCheck{Name: "redis"}

	client := database.GetRedisClient()
	if client == nil {
		check.Status = healthDegraded
		check.Error = "redis client not initialised"
		return check
	}

	start := time.Now()
	err := client.Ping(ctx).Err()
	check.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		check.Status = healthDegraded
		check.Error = err.Error()
		return check
	}

	check.Status = healthOK
	return check
}

func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := d - minutes*time.Minute

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh%dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm%ds", minutes, seconds/time.Second)
	default:
		return fmt.Sprintf("%ds", seconds/time.Second)
	}
}
