package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrstudio-backend/internal/config"
)

func TestClientOptions(t *testing.T) {
	opts := ClientOptions(config.DatabaseConfig{
		URI:              "mongodb://localhost:27017",
		MaxPoolSize:      25,
		MinPoolSize:      2,
		ConnectTimeout:   3 * time.Second,
		OperationTimeout: 4 * time.Second,
	})
	require.NoError(t, opts.Validate())

	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(25), *opts.MaxPoolSize)
	require.NotNil(t, opts.MinPoolSize)
	assert.Equal(t, uint64(2), *opts.MinPoolSize)
	require.NotNil(t, opts.ConnectTimeout)
	assert.Equal(t, 3*time.Second, *opts.ConnectTimeout)
	require.NotNil(t, opts.Timeout)
	assert.Equal(t, 4*time.Second, *opts.Timeout)
	require.NotNil(t, opts.AppName)
	assert.Equal(t, "qrstudio-backend", *opts.AppName)
}

func TestClientOptionsLeavesDriverDefaults(t *testing.T) {
	opts := ClientOptions(config.DatabaseConfig{URI: "mongodb://localhost:27017"})

	assert.Nil(t, opts.MaxPoolSize)
	assert.Nil(t, opts.ConnectTimeout)
	assert.Nil(t, opts.Timeout)
}
