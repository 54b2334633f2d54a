package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness reports that the process is alive. No dependency checks.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HealthDependenciesHandler checks the backing stores. Mongo is optional
// (the journal degrades gracefully), so a nil client reports "disabled"
// without failing readiness.
type HealthDependenciesHandler struct {
	rdb   *redis.Client
	mongo *mongo.Client
}

func NewHealthDependenciesHandler(rdb *redis.Client, mc *mongo.Client) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{rdb: rdb, mongo: mc}
}

// Readiness pings Redis (required) and Mongo (optional).
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{}
	healthy := true

	if err := h.rdb.Ping(ctx).Err(); err != nil {
		deps["redis"] = "down: " + err.Error()
		healthy = false
	} else {
		deps["redis"] = "up"
	}

	switch {
	case h.mongo == nil:
		deps["mongo"] = "disabled"
	case h.mongo.Ping(ctx, readpref.Primary()) != nil:
		deps["mongo"] = "down"
	default:
		deps["mongo"] = "up"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, deps)
}
