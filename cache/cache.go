// Package cache holds objects that are expensive to build and never change
// during a session: letter distributions and lexica. They are keyed by a
// prefixed name such as "lexicon:/path/to/words.txt".
package cache

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tashbetz/config"
)

type LoadFunc func(cfg *config.Config, key string) (any, error)

type cache struct {
	sync.Mutex
	objects map[string]any
}

var globalCache = &cache{objects: make(map[string]any)}

func (c *cache) get(cfg *config.Config, key string, loadFunc LoadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := loadFunc(cfg, key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

// Load returns the object stored under key, calling loadFunc to build it
// the first time it is asked for.
func Load(cfg *config.Config, key string, loadFunc LoadFunc) (any, error) {
	return globalCache.get(cfg, key, loadFunc)
}

// LoadTyped is Load with the type assertion done for the caller.
func LoadTyped[T any](cfg *config.Config, key string, loadFunc LoadFunc) (T, error) {
	var zero T
	obj, err := Load(cfg, key, loadFunc)
	if err != nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("cache object %v has type %T", key, obj)
	}
	return t, nil
}

// Purge empties the cache.
func Purge() {
	globalCache.Lock()
	defer globalCache.Unlock()
	globalCache.objects = make(map[string]any)
}
