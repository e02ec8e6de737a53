package wormhole

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainIdFromName(t *testing.T) {
	id, ok := ChainIdFromName("ArbitrumOne")
	assert.True(t, ok)
	assert.Equal(t, ChainIdArbitrum, id)

	id, ok = ChainIdFromName("NotAChain")
	assert.False(t, ok)
	assert.Equal(t, ChainIdUnset, id)
}

func TestGetVaa(t *testing.T) {
	vaa := []byte{0x01, 0x02, 0x03, 0x04}
	encoded := base64.StdEncoding.EncodeToString(vaa)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/signed_vaa/2/000000000000000000000000deadbeef/42", r.URL.Path)
		w.Write([]byte(`{"vaaBytes":"` + encoded + `"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.GetVaa(context.Background(), ChainIdEthereum, "000000000000000000000000deadbeef", "42")
	assert.NoError(t, err)
	assert.Equal(t, vaa, got)
}

func TestGetVaaNotYetAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.GetVaa(context.Background(), ChainIdEthereum, "emitter", "1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetVaaServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetVaa(context.Background(), ChainIdEthereum, "emitter", "1")
	assert.Error(t, err)
}

func TestGetVaaMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vaaBytes": "not base64!!"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetVaa(context.Background(), ChainIdEthereum, "emitter", "1")
	assert.Error(t, err)
}
