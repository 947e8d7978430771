package database

import (
	"testing"

	"github.com/richxcame/scamwatch/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "postgres",
		DBName:   "scamwatch",
		SSLMode:  "disable",
		MaxConns: 12,
		MinConns: 3,
	}

	poolConfig, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(12), poolConfig.MaxConns)
	assert.Equal(t, int32(3), poolConfig.MinConns)
	assert.Equal(t, "scamwatch", poolConfig.ConnConfig.Database)
	assert.Equal(t, uint16(5432), poolConfig.ConnConfig.Port)
}

func TestPoolConfig_InvalidDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "localhost", Port: "not-a-port"}

	_, err := PoolConfig(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse database config")
}

func TestClose_NilPool(t *testing.T) {
	assert.NotPanics(t, func() { Close(nil) })
}
