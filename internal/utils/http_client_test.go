package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_NotNil(t *testing.T) {
	client := NewHTTPClient()

	require.NotNil(t, client)
	require.NotNil(t, client.Client)
}

func TestNewHTTPClient_Independence(t *testing.T) {
	// Each call owns its own resty client, connection pool included.
	client1 := NewHTTPClient()
	client2 := NewHTTPClient()

	assert.NotSame(t, client1.Client, client2.Client)
}

func TestHTTPClient_EmbeddedClientUsable(t *testing.T) {
	client := NewHTTPClient()

	client.SetBaseURL("http://localhost:8080")
	assert.Equal(t, "http://localhost:8080", client.BaseURL)
}
