package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld возвращается, когда слот уже удерживается другим запросом
var ErrLockHeld = errors.New("lock: slot is held by another request")

// Locker кратковременная блокировка ключа на время бронирования
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// Release снимает блокировку, полученную через Lock
type Release func(ctx context.Context) error

// SlotKey ключ блокировки слота врача
func SlotKey(doctorID, date string, minutes int) string {
	return fmt.Sprintf("appointment-slot:%s:%s:%d", doctorID, date, minutes)
}

// unlockScript удаляет ключ, только если он всё ещё принадлежит владельцу токена
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock блокировка через SET NX с TTL
type RedisLock struct {
	client redis.UniversalClient
}

// NewRedisLock подключается к Redis и проверяет соединение
func NewRedisLock(addr, password string, db int) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client}, nil
}

// NewRedisLockWithClient использует готовый клиент
func NewRedisLockWithClient(client redis.UniversalClient) *RedisLock {
	return &RedisLock{client: client}
}

// Lock пытается занять ключ. Если ключ занят, возвращает ErrLockHeld без ожидания.
func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	const op = "lock.RedisLock.Lock"

	lockKey := fmt.Sprintf("lock:%s", key)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrLockHeld, key)
	}

	return func(ctx context.Context) error {
		if err := unlockScript.Run(ctx, r.client, []string{lockKey}, token).Err(); err != nil {
			return fmt.Errorf("lock.RedisLock.Unlock: %w", err)
		}
		return nil
	}, nil
}

// Close закрывает соединение
func (r *RedisLock) Close() error {
	return r.client.Close()
}

// NoopLocker используется, когда Redis выключен.
// Взаимное исключение тогда обеспечивают транзакция и уникальный индекс.
type NoopLocker struct{}

// Lock всегда успешен
func (NoopLocker) Lock(context.Context, string, time.Duration) (Release, error) {
	return func(context.Context) error { return nil }, nil
}
