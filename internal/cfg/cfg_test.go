package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("POSTGRES_USER", "store")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "store")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_TOPIC", "products.events")
	t.Setenv("JWT_SECRET", "test-secret")
}

func resetEnv(t *testing.T) {
	t.Helper()
	env = newEnv()
	t.Cleanup(func() { env = newEnv() })
}

func TestLoad_Defaults(t *testing.T) {
	resetEnv(t)
	setRequiredEnv(t)

	cfg, err := Load(nopLogger{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Http.Port)
	assert.Equal(t, []string{"*"}, cfg.Http.AllowedOrigins)
	assert.Equal(t, "localhost", cfg.Db.Host)
	assert.Equal(t, "db/migrations", cfg.Db.MigrationsPath)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Minute, cfg.Redis.ProductTTL)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "http://minio:9000/product-images", cfg.Minio.PublicURL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.JWTTTL)
	assert.False(t, cfg.Auth.AdminOnlyProductWrites)
	assert.False(t, cfg.Google.Enabled)
	assert.Equal(t, 3, cfg.Cart.MaxRetries)
	assert.Empty(t, cfg.Rabbit.URL)
	assert.Equal(t, "store.cart.events", cfg.Rabbit.Exchange)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingRequired(t *testing.T) {
	resetEnv(t)
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load(nopLogger{})
	assert.ErrorContains(t, err, "JWT_SECRET is required")
}

func TestLoad_InvalidValues(t *testing.T) {
	resetEnv(t)
	setRequiredEnv(t)
	t.Setenv("CART_MAX_RETRIES", "many")

	_, err := Load(nopLogger{})
	assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
}

func TestLoad_DotEnvFile(t *testing.T) {
	resetEnv(t)
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=9000\nMONGO_DB=carts\nPRODUCT_TTL=1m\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MONGO_DB", "from-env")

	cfg, err := Load(nopLogger{})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Http.Port)
	assert.Equal(t, time.Minute, cfg.Redis.ProductTTL)
	assert.Equal(t, "from-env", cfg.Mongo.Database, "environment overrides the file")
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a, ,b ,"))
	assert.Empty(t, splitCSV(""))
}
