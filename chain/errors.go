package chain

import "fmt"

// UnsupportedChainTypeError is returned by factories refusing a chain type.
// Fatal for that single chain only.
type UnsupportedChainTypeError struct {
	ChainType ChainType
}

func (e *UnsupportedChainTypeError) Error() string {
	return fmt.Sprintf("unsupported chain type: %s", e.ChainType)
}

// ConfigurationError marks a required field missing at handler construction.
// Fatal for that single chain only.
type ConfigurationError struct {
	ChainName string
	Field     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("chain %s: missing required config field %s", e.ChainName, e.Field)
}
