package test

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v4/stdlib" //nolint:revive

	"github.com/code-payments/bucky-bank-server/pkg/retry"
	"github.com/code-payments/bucky-bank-server/pkg/retry/backoff"
)

const (
	containerName     = "postgres"
	containerVersion  = "13"
	containerAutoKill = 120 * time.Second

	port     = 5432
	user     = "localtest"
	password = "localpassword"
	dbname   = "testdb"
)

// StartPostgresDB runs a postgres container and returns a connection to it.
// closeFunc removes the container.
func StartPostgresDB(pool *dockertest.Pool) (db *sql.DB, closeFunc func(), err error) {
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: containerName,
		Tag:        containerVersion,
		Env: []string{
			"listen_addresses = '*'",
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbname,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start resource")
	}

	closeFunc = func() {
		if err := pool.Purge(resource); err != nil {
			logrus.StandardLogger().WithError(err).Warn("failed to purge postgres container")
		}
	}

	// Expire never returns an error. The container is killed even if the test
	// binary exits without calling closeFunc.
	_ = resource.Expire(uint(containerAutoKill.Seconds()))

	hostAndPort := resource.GetHostPort(fmt.Sprintf("%d/tcp", port))
	databaseUrl := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, hostAndPort, dbname)

	_, err = retry.Retry(
		func() error {
			db, err = sql.Open("pgx", databaseUrl)
			if err != nil {
				return err
			}
			return db.Ping()
		},
		retry.Limit(50),
		retry.BackoffWithJitter(backoff.BinaryExponential(50*time.Millisecond), 500*time.Millisecond, 0.1),
	)
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "timed out waiting for postgres container to become available")
	}

	return db, closeFunc, nil
}
