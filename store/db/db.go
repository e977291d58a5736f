// Package db selects the storage driver named by the profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/codeWithHak/sorted/server/profile"
	"github.com/codeWithHak/sorted/store"
	"github.com/codeWithHak/sorted/store/db/mysql"
	"github.com/codeWithHak/sorted/store/db/postgres"
	"github.com/codeWithHak/sorted/store/db/sqlite"
)

// NewDriver opens the database driver for the given profile.
func NewDriver(prof *profile.Profile) (store.Driver, error) {
	switch prof.Driver {
	case "sqlite":
		return sqlite.NewDB(prof.DSN)
	case "postgres":
		return postgres.NewDB(prof.DSN)
	case "mysql":
		return mysql.NewDB(prof.DSN)
	default:
		return nil, errors.Errorf("unknown driver %q", prof.Driver)
	}
}
