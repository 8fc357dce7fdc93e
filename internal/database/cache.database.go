package database

import (
	"fmt"
	"turnover/config"

	"github.com/valkey-io/valkey-go"
)

// Valkey database indexes, one per cache category.
const (
	GENERAL_CACHE_INDEX = iota
	USER_CACHE_INDEX
	// AVAILABILITY_CACHE_INDEX holds weekly windows and time-off per cleaner,
	// read on every oracle evaluation.
	AVAILABILITY_CACHE_INDEX
	// EVENTS_CACHE_INDEX carries the pub/sub event bus.
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.ErrMsg("failed to initialize cache database: address or port is empty")
	}

	clients := []struct {
		target *CacheClient
		index  int
		name   string
	}{
		{&s.Cache.General, GENERAL_CACHE_INDEX, "general"},
		{&s.Cache.User, USER_CACHE_INDEX, "user"},
		{&s.Cache.Availability, AVAILABILITY_CACHE_INDEX, "availability"},
		{&s.Cache.Events, EVENTS_CACHE_INDEX, "events"},
	}

	for _, c := range clients {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    c.index,
		})
		if err != nil {
			return log.Err("failed to create valkey client", err, "cache", c.name)
		}
		*c.target = client
	}

	return nil
}
