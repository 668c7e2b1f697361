package services

import (
	goContext "context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jigworks/jig_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// RateLimitService applies per-IP fixed windows in redis. Redemption and
// completion are anonymous, so the source IP is the only surface to limit.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	enabled  bool
	redisSvc *RedisService
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int64
	WindowSize   time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	svc.enabled = os.Getenv("RATE_LIMIT_ENABLED") != "false"
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.initDefaultConfigs()
	return nil
}

// ==================== CONFIGURATION MANAGEMENT ====================

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"code_create": {
			EndpointType: "code_create",
			MaxRequests:  30,
			WindowSize:   15 * time.Minute,
			Description:  "Code creation rate limit",
			IsActive:     true,
		},
		"code_redeem": {
			EndpointType: "code_redeem",
			MaxRequests:  60,
			WindowSize:   15 * time.Minute,
			Description:  "Anonymous code redemption rate limit",
			IsActive:     true,
		},
		"instance_complete": {
			EndpointType: "instance_complete",
			MaxRequests:  60,
			WindowSize:   15 * time.Minute,
			Description:  "Completion report rate limit",
			IsActive:     true,
		},
		"auth": {
			EndpointType: "auth",
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			Description:  "Register/login rate limit",
			IsActive:     true,
		},
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			Description:  "General API rate limit per IP",
			IsActive:     true,
		},
	}
}

func (svc *RateLimitService) config(endpointType string) *RateLimitConfig {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	return svc.configs[endpointType]
}

// Allow reports whether another request fits inside the caller's window.
func (svc *RateLimitService) Allow(endpointType, clientIP string) (bool, error) {
	if !svc.enabled {
		return true, nil
	}

	cfg := svc.config(endpointType)
	if cfg == nil || !cfg.IsActive {
		return true, nil
	}

	ctx := goContext.Background()
	key := fmt.Sprintf("rl:%s:%s", endpointType, clientIP)

	count, err := svc.redisSvc.Increment(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, key, cfg.WindowSize); err != nil {
			log.WithError(err).Warn("Failed to set rate limit window expiry")
		}
	}

	return count <= cfg.MaxRequests, nil
}

// Middleware rejects callers over their window with 429.
func (svc *RateLimitService) Middleware(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := svc.Allow(endpointType, c.IP())
		if err != nil {
			// Redis being down should not take the API with it.
			log.WithError(err).Warn("Rate limit check failed, allowing request")
			return c.Next()
		}
		if !allowed {
			return shared.NewAppError(fiber.StatusTooManyRequests, errors.New("rate limit exceeded"), "Too many requests")
		}
		return c.Next()
	}
}
