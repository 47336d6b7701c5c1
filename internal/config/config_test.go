package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Db: DbConfig{
			Username: "test",
			Password: "test",
			Address:  "mongodb://localhost:27017",
			DbName:   "test",
		},
		Venue: VenueConfig{
			Kind:          VenueKindHTTP,
			URL:           "http://localhost:8080",
			Timeout:       10 * time.Second,
			MaxRetryTimes: 3,
			RetryInterval: time.Second,
		},
		Ledger: LedgerConfig{
			StorageEscrow: "1000",
		},
		Chain: ChainConfig{
			GenesisTime: "2024-01-01T00:00:00Z",
			BlockTime:   time.Second,
			EpochLength: 43200,
		},
		Poller: PollerConfig{
			StakeBatchInterval:        time.Minute,
			RedeemBatchInterval:       time.Minute,
			PendingWithdrawalInterval: 10 * time.Minute,
		},
		Queue: &QueueConfig{
			User:           "test",
			Password:       "test",
			URL:            "localhost:5672",
			Exchange:       "settlement",
			PublishTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8090,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Host: "0.0.0.0",
			Port: 2112,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, uint64(defaultUnstakeDelayEpochs), cfg.Ledger.UnstakeDelayEpochs)
		assert.Equal(t, defaultStateLogInterval, cfg.Poller.StateLogInterval)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("queue is optional", func(t *testing.T) {
		cfg := validConfig()
		cfg.Queue = nil
		require.NoError(t, cfg.Validate())
		assert.Nil(t, cfg.Queue)
	})

	t.Run("memory venue needs no url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Venue = VenueConfig{Kind: VenueKindMemory}
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown venue kind", func(t *testing.T) {
		cfg := validConfig()
		cfg.Venue.Kind = "grpc"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown venue kind "grpc"`)
	})

	t.Run("invalid storage escrow", func(t *testing.T) {
		cfg := validConfig()
		cfg.Ledger.StorageEscrow = "-5"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid storage-escrow")
	})

	t.Run("invalid genesis time", func(t *testing.T) {
		cfg := validConfig()
		cfg.Chain.GenesisTime = "yesterday"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid genesis-time")
	})

	t.Run("unsupported db scheme", func(t *testing.T) {
		cfg := validConfig()
		cfg.Db.Address = "postgres://localhost:5432"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported db address scheme")
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "loud"
		require.Error(t, cfg.Validate())
	})
}

func TestLedgerConfig_StorageEscrowAmount(t *testing.T) {
	cfg := &LedgerConfig{}
	amount, err := cfg.StorageEscrowAmount()
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	cfg.StorageEscrow = "2500000"
	amount, err = cfg.StorageEscrowAmount()
	require.NoError(t, err)
	assert.Equal(t, "2500000", amount.String())
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
db:
  username: root
  password: example
  db-name: settlement
  address: "mongodb://localhost:27017"
venue:
  kind: memory
ledger:
  storage-escrow: "100"
  unstake-delay-epochs: 2
chain:
  genesis-time: "2024-01-01T00:00:00Z"
  block-time: 1s
  epoch-length: 60
poller:
  stake-batch-interval: 30s
  redeem-batch-interval: 30s
  pending-withdrawal-interval: 5m
server:
  host: 127.0.0.1
  port: 8090
  read-timeout: 5s
  write-timeout: 10s
metrics:
  host: 127.0.0.1
  port: 2112
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Db.Password)
	assert.Equal(t, VenueKindMemory, cfg.Venue.Kind)
	assert.Equal(t, uint64(2), cfg.Ledger.UnstakeDelayEpochs)
	assert.Equal(t, 5*time.Minute, cfg.Poller.PendingWithdrawalInterval)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Nil(t, cfg.Queue)

	genesis, err := cfg.Chain.Genesis()
	require.NoError(t, err)
	assert.Equal(t, 2024, genesis.Year())
}
