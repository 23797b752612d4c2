package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// entry 是链表节点中保存的数据。
type entry[K comparable, V any] struct {
	key        K
	value      V
	expiration time.Time
}

// LRUCache 是一个带可选 TTL 的线程安全 LRU 缓存。
type LRUCache[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	ll    *list.List
	items map[K]*list.Element
	mu    sync.Mutex
}

// NewLRU 创建一个 LRU 缓存。ttl 为 0 时元素永不过期。
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("LRU 容量必须大于 0: %d", capacity)
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		ll:       list.New(),
		items:    make(map[K]*list.Element),
	}, nil
}

// Get 根据键获取值，过期的元素会被顺带淘汰。
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expired(e) {
		c.remove(el)
		return zero, false
	}
	c.ll.MoveToFront(el)
	return e.value, true
}

// Put 添加或更新一个键值对，并刷新其过期时间。
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value)
}

// PutIfAbsent 仅在键不存在 (或已过期) 时写入，返回是否写入成功。
func (c *LRUCache[K, V]) PutIfAbsent(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		if !c.expired(el.Value.(*entry[K, V])) {
			return false
		}
		c.remove(el)
	}
	c.put(key, value)
	return true
}

// Remove 删除一个键。
func (c *LRUCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Len 返回当前元素数量 (可能包含尚未被淘汰的过期元素)。
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRUCache[K, V]) put(key K, value V) {
	var exp time.Time
	if c.ttl > 0 {
		exp = c.now().Add(c.ttl)
	}

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.expiration = exp
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&entry[K, V]{key: key, value: value, expiration: exp})
	for c.ll.Len() > c.capacity {
		c.remove(c.ll.Back())
	}
}

func (c *LRUCache[K, V]) expired(e *entry[K, V]) bool {
	return c.ttl > 0 && c.now().After(e.expiration)
}

func (c *LRUCache[K, V]) remove(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}
