package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ============================================================================
// CACHE - IN-MEMORY CON TTL
// ============================================================================
// Caché genérico thread-safe con expiración y limpieza periódica.
// Lo usan los combos de facturación y las colonias por código postal, tanto
// en el cliente (evitar pedir GetCombos en cada modal) como en el backend.
//
// Uso:
//   combos := New[[]models.ComboItem](10*time.Minute, 15*time.Minute)
//   defer combos.Stop()
//   combos.Set("combos", items)
//   if items, ok := combos.Get("combos"); ok { ... }

type entry[V any] struct {
	value      V
	expiration int64 // UnixNano, 0 = sin expiración
}

// Cache es un almacén key-value con TTL.
type Cache[V any] struct {
	items             map[string]entry[V]
	mu                sync.RWMutex
	defaultExpiration time.Duration
	cleanupInterval   time.Duration
	stopCleanup       chan struct{}
	stopOnce          sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

// New crea un caché con TTL por defecto. Con cleanupInterval > 0 arranca una
// goroutine que borra los expirados; se detiene con Stop.
func New[V any](defaultExpiration, cleanupInterval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items:             make(map[string]entry[V]),
		defaultExpiration: defaultExpiration,
		cleanupInterval:   cleanupInterval,
		stopCleanup:       make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.startCleanupTimer()
	}

	return c
}

// Set almacena un valor con la expiración por defecto
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultExpiration)
}

// SetWithTTL almacena un valor con una duración específica (<= 0 no expira)
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiration: expiration}
	c.mu.Unlock()
}

// Get retorna (valor, true) si existe y no ha expirado
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !found {
		c.misses.Add(1)
		return zero, false
	}
	if item.expired(time.Now().UnixNano()) {
		c.Delete(key)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return item.value, true
}

// GetOrLoad retorna el valor cacheado o llama a load y guarda su resultado.
// Los errores de load no se cachean.
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePrefix elimina las keys con el prefijo dado (ej: "cp:" invalida todas las colonias)
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			count++
		}
	}
	return count
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]entry[V])
	c.mu.Unlock()
}

// Count retorna el número de items (incluye expirados aún no limpiados)
func (c *Cache[V]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats son las estadísticas del caché
type Stats struct {
	TotalItems   int     `json:"total_items"`
	ExpiredItems int     `json:"expired_items"`
	ValidItems   int     `json:"valid_items"`
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hit_rate"`
}

func (c *Cache[V]) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		TotalItems: len(c.items),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
	}

	now := time.Now().UnixNano()
	for _, item := range c.items {
		if item.expired(now) {
			stats.ExpiredItems++
		} else {
			stats.ValidItems++
		}
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	return stats
}

func (c *Cache[V]) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache[V]) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.expired(now) {
			delete(c.items, key)
		}
	}
}

// Stop detiene la limpieza automática. Es seguro llamarlo más de una vez.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}

func (e entry[V]) expired(now int64) bool {
	return e.expiration > 0 && now > e.expiration
}
