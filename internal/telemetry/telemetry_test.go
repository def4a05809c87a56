package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexindevs/orgbase/internal/config"
	"github.com/alexindevs/orgbase/internal/telemetry"
)

func TestNewWithoutEndpointIsNoop(t *testing.T) {
	provider, err := telemetry.New(context.Background(), config.Config{
		ServiceName: "orgbase-test",
		Environment: "test",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, provider.Tracer())
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNilProviderIsSafe(t *testing.T) {
	var provider *telemetry.Provider
	require.NotNil(t, provider.Tracer())
	require.NoError(t, provider.Shutdown(context.Background()))
}
