package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Store holds the live configuration. Game dates and the admin list may be
// edited mid-season, so readers always go through Get instead of caching
// the snapshot they saw at startup.
type Store struct {
	mu   sync.RWMutex
	conf *AppConfig
}

func NewStore(conf *AppConfig) *Store {
	return &Store{conf: conf}
}

func (s *Store) Get() *AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.conf
}

func (s *Store) Game() GameConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return *s.conf.Game
}

func (s *Store) set(conf *AppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conf = conf
}

// Watch re-reads the config file on change and swaps the snapshot in.
// A snapshot that fails validation is logged and dropped; the previous
// one stays in effect.
func (s *Store) Watch() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		var conf AppConfig
		if err := viper.Unmarshal(&conf); err != nil {
			zap.L().Error("config reload failed", zap.String("file", e.Name), zap.Error(err))

			return
		}

		if err := conf.Validate(); err != nil {
			zap.L().Error("config reload rejected", zap.String("file", e.Name), zap.Error(err))

			return
		}

		s.set(&conf)
		zap.L().Info("config reloaded", zap.String("file", e.Name))
	})

	viper.WatchConfig()
}
