package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"schooladmin_go/database"
	"schooladmin_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every HTTP request with latency and status. Server
// errors log at error level, client errors at warn.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		entry := logrus.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		})
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}

		return err
	}
}

// LogActivity records an audit entry for a mutation. Entries are written
// behind the request: to the Redis log buffer when available, straight to
// the database otherwise. A request without claims is recorded as user 0.
func LogActivity(c *fiber.Ctx, action, resource string, resourceID uint, details interface{}) {
	var userID uint
	if user, err := GetCurrentUser(c); err == nil {
		userID = user.ID
	}

	var detailsJSON models.JSON
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = b
		}
	}

	entry := models.ActivityLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    detailsJSON,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	entry.CreatedAt = time.Now()

	go func(al models.ActivityLog) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("activity log writer panicked")
			}
		}()

		if err := bufferActivityLog(al); err == nil {
			return
		}
		if database.DB == nil {
			logrus.Error("no database connection, audit entry dropped")
			return
		}
		if err := database.DB.Create(&al).Error; err != nil {
			logrus.WithError(err).Error("failed to persist audit entry")
		}
	}(entry)
}

// bufferActivityLog parks the entry in Redis. Keys follow
// log:<user>:<action>:<nanos> with a 24h TTL; the logs:queue sorted set
// indexes them by write time so the flusher can drain oldest first.
func bufferActivityLog(entry models.ActivityLog) error {
	client := database.GetRedisClient()
	if client == nil {
		return fmt.Errorf("redis unavailable")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	ctx := context.Background()
	key := fmt.Sprintf("log:%d:%s:%d", entry.UserID, entry.Action, time.Now().UnixNano())
	if err := client.Set(ctx, key, payload, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("buffer audit entry: %w", err)
	}
	if err := client.ZAdd(ctx, "logs:queue", &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: key,
	}).Err(); err != nil {
		logrus.WithError(err).Warn("audit entry buffered but not queued")
	}
	return nil
}

// AuditTrail records successful mutations automatically. Reads and auth
// endpoints are skipped; handlers that need richer details call
// LogActivity themselves in addition.
func AuditTrail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || strings.Contains(c.Path(), "/auth/") {
			return c.Next()
		}

		err := c.Next()

		action := auditAction(c.Method())
		if action == "" {
			return err
		}

		var resourceID uint
		if raw := c.Params("id"); raw != "" {
			if id, perr := strconv.ParseUint(raw, 10, 32); perr == nil {
				resourceID = uint(id)
			}
		}

		if c.Response().StatusCode() < 400 {
			LogActivity(c, action, auditResource(c.Path()), resourceID, nil)
		}

		return err
	}
}

func auditAction(method string) string {
	switch method {
	case fiber.MethodPost:
		return "CREATE"
	case fiber.MethodPut, fiber.MethodPatch:
		return "UPDATE"
	case fiber.MethodDelete:
		return "DELETE"
	default:
		return ""
	}
}

// auditResource pulls the collection segment out of an /api/<resource>/...
// path.
func auditResource(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
