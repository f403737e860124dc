package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

const planCachePrefix = "meal_plan:v1:"

// RedisPlanCache stores finished plans in Redis under the request hash.
type RedisPlanCache struct {
	client *redis.Client
}

// NewRedisPlanCache creates a RedisPlanCache
func NewRedisPlanCache(client *redis.Client) *RedisPlanCache {
	return &RedisPlanCache{client: client}
}

// Get returns the cached plan for key. A miss is (nil, false, nil).
func (c *RedisPlanCache) Get(ctx context.Context, key string) (*planner.PlanResult, bool, error) {
	data, err := c.client.Get(ctx, planCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached plan: %w", err)
	}
	var res planner.PlanResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached plan: %w", err)
	}
	return &res, true, nil
}

// Set stores res under key for ttl.
func (c *RedisPlanCache) Set(ctx context.Context, key string, res *planner.PlanResult, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := c.client.Set(ctx, planCachePrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache plan: %w", err)
	}
	return nil
}

// cacheKeyInput is the part of a request that determines the plan. The user
// and the opaque preferences do not.
type cacheKeyInput struct {
	Days          int             `json:"days"`
	Dishes        []planner.Dish  `json:"dishes"`
	DailyCalories float64         `json:"daily_calories"`
	BudgetWeek    float64         `json:"budget_week"`
	Restrictions  []string        `json:"restrictions"`
	Options       planner.Options `json:"options"`
}

// RequestKey hashes the plan-relevant part of req together with the engine
// options. Restrictions are compared case-insensitively and as a set.
func RequestKey(req planner.PlanRequest, opts planner.Options) string {
	restrictions := make([]string, 0, len(req.DietaryRestrictions))
	seen := make(map[string]bool, len(req.DietaryRestrictions))
	for _, r := range req.DietaryRestrictions {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		restrictions = append(restrictions, r)
	}
	sort.Strings(restrictions)

	// Marshal cannot fail: every field is a plain value and NaN is rejected
	// by validation before a key is computed.
	data, _ := json.Marshal(cacheKeyInput{
		Days:          req.Days,
		Dishes:        req.Dishes,
		DailyCalories: req.DailyCalories,
		BudgetWeek:    req.BudgetWeek,
		Restrictions:  restrictions,
		Options:       opts,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
