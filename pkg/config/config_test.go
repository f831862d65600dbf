package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, 8888, cfg.Server.Port)
	require.True(t, cfg.Payment.AllowMock)
	require.Equal(t, "EPAYTEST", cfg.Payment.Esewa.MerchantCode)
	require.Equal(t, 15*time.Second, cfg.Payment.HTTPTimeout)
	require.Equal(t, "payment.events", cfg.Kafka.Topic)
}

func TestNew_FileAndEnvOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), "feepay.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
env: prod
server:
  port: 9000
payment:
  allow_mock: false
  khalti:
    secret_key: from-file
kafka:
  brokers: ["k1:9092", "k2:9092"]
`), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)
	t.Setenv("APP_PAYMENT_KHALTI_SECRET_KEY", "from-env")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvProd, cfg.Env)
	require.Equal(t, 9000, cfg.Server.Port)
	require.False(t, cfg.Payment.AllowMock)
	require.Equal(t, "from-env", cfg.Payment.Khalti.SecretKey)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}
