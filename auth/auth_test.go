package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, expiresIn int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"access_token":"token%d","token_type":"bearer","expires_in":%d}`, n, expiresIn)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGetToken_Caches(t *testing.T) {
	srv, calls := tokenServer(t, 3600)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL})

	token, err := client.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token1", token)

	token, err = client.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token1", token)
	assert.EqualValues(t, 1, calls.Load())

	token, err = client.ForceRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token2", token)
}

func TestGetToken_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()
	client := NewClientCred(Conf{ClientID: "id", TokenURL: srv.URL})
	_, err := client.GetToken(context.Background())
	assert.ErrorContains(t, err, "failed to get token")
}

func TestConfValidate(t *testing.T) {
	assert.NoError(t, Conf{ClientID: "id", TokenURL: "http://idp/token"}.Validate())
	err := Conf{}.Validate()
	assert.ErrorContains(t, err, "client_id")
	assert.ErrorContains(t, err, "token_url")
}
