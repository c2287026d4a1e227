package model

import (
	"sync"
	"time"
)

// ClickerConfig contains the runtime settings read by the click scheduler
// at the start of every decision cycle.
type ClickerConfig struct {
	MinInterval     time.Duration
	MaxInterval     time.Duration
	PauseAfterInput time.Duration
	RestrictToApp   bool
	AllowedAppID    string
}

// Normalize clamps invalid interval bounds. The settings owner validates
// writes, so this only guards against drift observed mid-run.
func (config ClickerConfig) Normalize() ClickerConfig {
	if config.MinInterval < time.Millisecond {
		config.MinInterval = time.Millisecond
	}
	if config.MaxInterval < config.MinInterval {
		config.MaxInterval = config.MinInterval
	}
	if config.PauseAfterInput <= 0 {
		config.PauseAfterInput = 2 * time.Second
	}
	return config
}

// Store holds the current configuration. The UI replaces it at any time;
// the scheduler reads it once per decision cycle.
type Store struct {
	mu     sync.RWMutex
	config ClickerConfig
}

// NewStore creates a Store with the given initial configuration.
func NewStore(config ClickerConfig) *Store {
	return &Store{config: config}
}

// Current returns the latest configuration.
func (store *Store) Current() ClickerConfig {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.config
}

// Set replaces the configuration.
func (store *Store) Set(config ClickerConfig) {
	store.mu.Lock()
	store.config = config
	store.mu.Unlock()
}
