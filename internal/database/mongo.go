// internal/database/mongo.go
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"qrstudio-backend/internal/config"
)

// Collection names.
const (
	UsersCollection       = "users"
	HistoryCollection     = "qr_history"
	PreferencesCollection = "preferences"
	UsageCollection       = "usage"
)

const appName = "qrstudio-backend"

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// ClientOptions maps the database settings onto driver options. The
// operation timeout applies to every call whose context has no deadline.
func ClientOptions(cfg config.DatabaseConfig) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetMinPoolSize(cfg.MinPoolSize)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.OperationTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.OperationTimeout)
		opts.SetTimeout(cfg.OperationTimeout)
	}
	return opts
}

// NewMongoDB connects, verifies the primary is reachable and ensures the
// indexes exist. Setup is bounded by the connect timeout.
func NewMongoDB(ctx context.Context, cfg config.DatabaseConfig) (*MongoDB, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, ClientOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongodb := &MongoDB{
		Client:   client,
		Database: client.Database(cfg.Database),
	}

	if err := mongodb.CreateIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	zap.L().Info("Connected to MongoDB",
		zap.String("database", cfg.Database),
		zap.Uint64("max_pool_size", cfg.MaxPoolSize),
		zap.Duration("operation_timeout", cfg.OperationTimeout))
	return mongodb, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

func (m *MongoDB) GetCollection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// Ping backs the health check.
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}
