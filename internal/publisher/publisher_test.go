package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryProviderRecordsPayloads(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()
	id, err := p.Publish(context.Background(), map[string]string{"id": "idle-ec2"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = p.Publish(context.Background(), map[string]string{"id": "oversized-volumes"})
	require.NoError(t, err)

	payloads := p.Payloads()
	require.Len(t, payloads, 2)
	require.Equal(t, map[string]string{"id": "idle-ec2"}, payloads[0])
	require.NoError(t, p.Close())
}

func TestNoOpProvider(t *testing.T) {
	t.Parallel()

	p := NoOpProvider{}
	id, err := p.Publish(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, "noop", id)
	require.NoError(t, p.Close())
}
