// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"database/sql"
	"log"
	"log/slog"
	"os"
	"strconv"
	"testing"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/conf"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/db"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/db/testing/containers"
	"github.com/go-gorp/gorp"
	_ "github.com/mattn/go-sqlite3"
)

type DBEnv struct {
	*db.DB
	Close func()
}

func SetupDBEnv(t *testing.T) DBEnv {
	var env DBEnv
	// To run tests faster, the default is running with sqlite.
	if os.Getenv("POSTGRES_CONTAINER") == "1" {
		slog.Info("Using real postgres container")
		container := containers.PostgresContainer{}
		container.Init(t)
		port, err := strconv.Atoi(container.GetPort())
		if err != nil {
			t.Fatal(err)
		}
		pg, err := db.NewPostgresDB(t.Context(), conf.DBConfig{
			Host:     "localhost",
			Port:     port,
			User:     "postgres",
			Password: "secret",
			Database: "postgres",
		}, nil, db.NewDBMonitor(nil))
		if err != nil {
			t.Fatal(err)
		}
		env.DB = pg
		env.Close = func() {
			env.DB.Close()
			container.Close()
		}
	} else {
		slog.Info("Using sqlite")
		tmpDir := t.TempDir()
		sqlDB, err := sql.Open("sqlite3", tmpDir+"/test.db")
		if err != nil {
			t.Fatal(err)
		}
		env.DB = &db.DB{DbMap: &gorp.DbMap{Db: sqlDB, Dialect: gorp.SqliteDialect{}}}
		env.Close = func() {
			env.DB.Close()
		}
	}
	env.DbMap.TraceOn("[gorp]", log.New(os.Stdout, "hypervisor-stats:", log.Lmicroseconds))
	return env
}
