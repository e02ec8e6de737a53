package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbridge-io/relay-go/chain"
)

func TestDefaultRejectsUnknownChainType(t *testing.T) {
	_, err := Default(&chain.Config{ChainName: "Fantasy", ChainType: "Cosmos"}, chain.Deps{})
	require.Error(t, err)

	var unsupported *chain.UnsupportedChainTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, chain.ChainType("Cosmos"), unsupported.ChainType)
}

func TestDefaultRejectsIncompleteEvmConfig(t *testing.T) {
	_, err := Default(&chain.Config{ChainName: "BaseMainnet", ChainType: chain.TypeEvm}, chain.Deps{})
	require.Error(t, err)

	var confErr *chain.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "BaseMainnet", confErr.ChainName)
}

func TestDefaultRejectsIncompleteSuiConfig(t *testing.T) {
	_, err := Default(&chain.Config{ChainName: "SuiMainnet", ChainType: chain.TypeSui}, chain.Deps{})
	require.Error(t, err)

	var confErr *chain.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}
