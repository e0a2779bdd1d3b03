package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glove_go/internal/config"
	"glove_go/internal/models"
)

func TestDisabledServiceIsOfflineNoop(t *testing.T) {
	svc, err := NewService(config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	assert.False(t, svc.IsConnected())

	// Escritas em modo offline são descartadas sem erro
	assert.NoError(t, svc.WriteSnapshot(models.TelemetrySnapshot{LastUpdate: time.Now()}))
	assert.NoError(t, svc.WriteStatus(models.TransportStatus{Transport: "Serial"}))

	_, err = svc.GetSnapshot()
	assert.Error(t, err)

	svc.Shutdown()
}
