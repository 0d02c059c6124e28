package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// PoolOptions configure the connection pool of an opened database.
// Zero values keep the driver's defaults.
type PoolOptions struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Driver opens database handles for one SQL engine. Concrete drivers
// register themselves on import from the store subpackages.
type Driver interface {
	// Name is the identifier used in configuration files.
	Name() string
	// Dialect is the SQL-builder dialect the engine speaks.
	Dialect() string
	// Open connects, applies pool options and verifies with a ping.
	Open(ctx context.Context, dsn string, opts PoolOptions) (*sqlx.DB, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver makes a driver available by name. Called from driver
// package init functions; duplicate names panic.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		panic("store: RegisterDriver with nil driver")
	}
	if _, dup := drivers[d.Name()]; dup {
		panic("store: RegisterDriver called twice for " + d.Name())
	}
	drivers[d.Name()] = d
}

// GetDriver returns a registered driver by name.
func GetDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q (registered: %v)", name, driverNames())
	}
	return d, nil
}

func driverNames() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
