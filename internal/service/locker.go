package service

import (
	"context"
	"sync"
	"time"

	pkgredis "github.com/SayemTaher/university-management-server/pkg/redis"
)

// Locker 串行化需要跨请求互斥的写操作（如注册创建的"检查-写入"）
// 数据库唯一索引是最终防线，Locker 只负责让冲突以业务错误而非索引错误呈现
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ── 进程内实现（单实例部署） ──

type localLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalLocker 创建进程内 Locker
func NewLocalLocker() Locker {
	return &localLocker{slots: make(map[string]chan struct{})}
}

func (l *localLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ── Redis 实现（多实例部署） ──

type redisLocker struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// NewRedisLocker 基于 Redis SET NX 的分布式 Locker；ttl 为锁自动过期时间
func NewRedisLocker(client *pkgredis.Client, ttl time.Duration) Locker {
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	return l.client.Lock(ctx, key, l.ttl)
}
