// Package lock сериализует операции по ключу: внутри процесса или через Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/campus-lostfound/internal/logger"
)

// ErrTimeout блокировку не удалось получить за отведённое время.
var ErrTimeout = errors.New("lock: timeout")

// Locker выдаёт эксклюзивную блокировку на ключ. Возвращённую функцию нужно вызвать
// для освобождения.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Local блокировки в памяти процесса. Подходит для одного экземпляра сервиса.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, e, true) })
	}, nil
}

func (l *Local) release(key string, e *entry, held bool) {
	if held {
		<-e.ch
	}
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// RedisStore операции Redis, нужные распределённой блокировке.
type RedisStore interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
	LockKey(scope, id string) string
}

// Redis распределённая блокировка через SET NX с TTL.
type Redis struct {
	store    RedisStore
	scope    string
	ttl      time.Duration
	interval time.Duration
}

func NewRedis(store RedisStore, scope string, ttl time.Duration) *Redis {
	return &Redis{store: store, scope: scope, ttl: ttl, interval: 50 * time.Millisecond}
}

// Lock ждёт освобождения ключа, пока не истечёт ttl или контекст.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := r.store.LockKey(r.scope, key)
	token := uuid.NewString()
	deadline := time.Now().Add(r.ttl)

	for {
		ok, err := r.store.AcquireLock(ctx, fullKey, token, r.ttl)
		if err != nil {
			return nil, fmt.Errorf("lock: acquire %s: %w", fullKey, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}

		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// Контекст запроса может быть уже отменён, освобождаем независимо от него.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.store.ReleaseLock(releaseCtx, fullKey, token); err != nil {
			logger.WithComponent("lock").WithError(err).WithField("key", fullKey).Warn("не удалось снять блокировку")
		}
	}, nil
}
