package cache

import (
	"context"
	"encoding/json"
	"errors"

	"pesagate/api/internal/config"
	"pesagate/api/internal/domain"

	"github.com/redis/go-redis/v9"
)

const resultKeyPrefix = "callback:result:"

// RedisResults is the redis-backed Results store, used when several api
// instances share one cache.
type RedisResults struct {
	client *redis.Client
}

func InitRedisResults(config *config.Config) (*RedisResults, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.Db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisResults{client: client}, nil
}

func (r *RedisResults) Save(checkoutRequestId string, res *domain.CallbackResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}

	return r.client.Set(context.Background(), resultKeyPrefix+checkoutRequestId, payload, RESULT_TTL).Err()
}

func (r *RedisResults) Find(checkoutRequestId string) (*domain.CallbackResult, error) {
	payload, err := r.client.Get(context.Background(), resultKeyPrefix+checkoutRequestId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var res domain.CallbackResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (r *RedisResults) Delete(checkoutRequestId string) error {
	return r.client.Del(context.Background(), resultKeyPrefix+checkoutRequestId).Err()
}
