package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLocked возвращается, когда блокировка уже удерживается другим процессом
var ErrLocked = errors.New("resource is locked")

// Store обертка над Redis. Без адреса все операции становятся пустыми.
type Store struct {
	rdb    *redis.Client
	locker *redislock.Client
}

// New подключается к Redis; пустой адрес дает отключенный Store
func New(ctx context.Context, address string) (*Store, error) {
	if address == "" {
		return &Store{}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: address})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{rdb: rdb, locker: redislock.New(rdb)}, nil
}

// NewWithClient оборачивает готовый клиент
func NewWithClient(rdb *redis.Client) *Store {
	if rdb == nil {
		return &Store{}
	}
	return &Store{rdb: rdb, locker: redislock.New(rdb)}
}

// Enabled сообщает, подключен ли Redis
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// GetObject читает JSON объект по ключу
func (s *Store) GetObject(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetObject сохраняет объект как JSON
func (s *Store) SetObject(ctx context.Context, key string, obj any, exp time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, exp).Err()
}

// SetValue сохраняет строковое значение
func (s *Store) SetValue(ctx context.Context, key, value string, exp time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Set(ctx, key, value, exp).Err()
}

// Exists проверяет наличие ключа
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remove удаляет ключи
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// Lock захватывает распределенную блокировку. Без Redis возвращает пустую функцию освобождения.
func (s *Store) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if !s.Enabled() {
		return func() {}, nil
	}

	lock, err := s.locker.Obtain(ctx, key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrLocked
		}
		return nil, err
	}

	return func() {
		_ = lock.Release(context.Background())
	}, nil
}

// Close закрывает соединение
func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Close()
}
