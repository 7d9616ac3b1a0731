// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// ErrFull is returned when no entry can be evicted to make room.
var ErrFull = errors.New("cache full of live entries")

// LRU is a golang-lru cache able to hold entries until they expire.
type LRU struct {
	*lru.Cache
	mu      sync.Mutex
	maxSize int
	// lower bound of the expiry of cached entries added by AddUntil
	minExpiry uint64
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{Cache: cache, maxSize: maxSize}, nil
}

// AddUntil adds key with its expiry and reports true, or reports false if the
// key is already cached. Entries expire once now reaches their expiry. A live
// entry is never evicted: if the cache is full and nothing has expired, ErrFull
// is returned. Keys must only be added through AddUntil.
func (l *LRU) AddUntil(key any, expiry, now uint64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.Peek(key); ok {
		if v.(uint64) > now {
			return false, nil
		}
		l.Remove(key)
	}
	if l.Len() >= l.maxSize {
		if now < l.minExpiry {
			return false, ErrFull
		}
		l.purgeExpired(now)
		if l.Len() >= l.maxSize {
			return false, ErrFull
		}
	}

	if l.Len() == 0 || expiry < l.minExpiry {
		l.minExpiry = expiry
	}
	l.Add(key, expiry)
	return true, nil
}

func (l *LRU) purgeExpired(now uint64) {
	var lowest uint64
	for _, key := range l.Keys() {
		v, ok := l.Peek(key)
		if !ok {
			continue
		}
		if expiry := v.(uint64); expiry <= now {
			l.Remove(key)
		} else if lowest == 0 || expiry < lowest {
			lowest = expiry
		}
	}
	l.minExpiry = lowest
}
