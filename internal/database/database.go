package database

import (
	"context"
	"fmt"
	"time"

	"movie-ratings/internal/config"
	"movie-ratings/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database owns the process-wide Mongo client. It is created once in main and
// passed to every repository.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
	config config.DatabaseConfig
}

func Connect(cfg config.DatabaseConfig) (*Database, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logrus.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"database":     cfg.Name,
		"transactions": cfg.UseTransactions,
	}).Info("Database connection established successfully")

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an already connected client.
func NewWithClient(client *mongo.Client, cfg config.DatabaseConfig) *Database {
	return &Database{
		client: client,
		db:     client.Database(cfg.Name),
		config: cfg,
	}
}

func (d *Database) Movies() *mongo.Collection {
	return d.db.Collection(models.Movie{}.CollectionName())
}

func (d *Database) Ratings() *mongo.Collection {
	return d.db.Collection(models.Rating{}.CollectionName())
}

func (d *Database) DB() *mongo.Database {
	return d.db
}

func (d *Database) GetQueryTimeout() time.Duration {
	return d.config.QueryTimeout
}

// RunInTransaction runs fn inside a multi-document transaction when
// transactions are enabled. Otherwise fn runs directly and each write inside
// it commits on its own.
func (d *Database) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !d.config.UseTransactions {
		return fn(ctx)
	}

	session, err := d.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (d *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return d.client.Ping(ctx, readpref.Primary())
}

func (d *Database) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return d.client.Disconnect(ctx)
}
