package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Redis      []bool    `json:"redis"`
	Generation bool      `json:"generation"`
	CheckedAt  time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
// generationProbe reports whether the configured generation backend is reachable.
func StartHealthMonitor(redisClients []*redis.Client, generationProbe func(context.Context) bool) {
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		ctx := context.Background()

		for range ticker.C {
			var redisHealth []bool

			for _, client := range redisClients {
				err := client.Ping(ctx).Err()
				redisHealth = append(redisHealth, err == nil)
			}

			generationHealthy := generationProbe == nil || generationProbe(ctx)

			mu.Lock()
			currentHealth = HealthStatus{
				Redis:      redisHealth,
				Generation: generationHealthy,
				CheckedAt:  time.Now(),
			}
			mu.Unlock()
		}
	}()
}
