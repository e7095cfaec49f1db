package supabase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unitrack-api/pkg/config"
)

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New(config.SupabaseConfig{AnonKey: "anon"}, false)
	require.ErrorIs(t, err, config.ErrMissingSupabase)

	_, err = New(config.SupabaseConfig{URL: "not a url", AnonKey: "anon"}, false)
	require.Error(t, err)
}

func TestNewSharesClientWithoutServiceRole(t *testing.T) {
	clients, err := New(config.SupabaseConfig{URL: "https://project.supabase.co", AnonKey: "anon"}, false)
	require.NoError(t, err)
	assert.Same(t, clients.Auth, clients.Table)

	clients, err = New(config.SupabaseConfig{URL: "https://project.supabase.co", AnonKey: "anon", ServiceRoleKey: "service"}, false)
	require.NoError(t, err)
	assert.NotSame(t, clients.Auth, clients.Table)
}
