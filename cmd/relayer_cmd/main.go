package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/cmd"
	"github.com/bitbridge-io/relay-go/logconfig"
)

const (
	ENV_CONFIG_FILE_PATH = "RELAY_CONFIG"
	ENV_DEBUG            = "RELAY_DEBUG"
)

func main() {
	// Tool to read environment variables
	viper.AutomaticEnv()

	if viper.GetBool(ENV_DEBUG) {
		logconfig.ConfigDebugLogger()
	} else {
		logconfig.ConfigProductionLogger()
	}

	// Accessing an environment variable of configuration file location.
	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	fmt.Printf("Relay server configuration file = %s\n", _config_file)

	if !cmd.FileExists(_config_file) {
		fmt.Printf("Relay server configuration file not found: %s\n", _config_file)
		return
	}

	success := initializeViper(_config_file)
	if !success {
		return
	}

	rsc := PrepareRelayServerConfig()
	if rsc == nil {
		fmt.Printf("Error loading relay server configuration\n")
		return
	}

	fmt.Println("Starting relay server... press Ctrl+C to kill the server")
	cmd.StartRelayServerAndWait(rsc)
}

func initializeViper(filePath string) bool {
	viper.SetConfigFile(filePath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Error reading configuration file, %s", err)
		return false
	}
	return true
}

// PrepareRelayServerConfig reads configuration variables and returns a
// RelayServerConfig.
func PrepareRelayServerConfig() *cmd.RelayServerConfig {
	chains := prepareChainConfigs()
	if len(chains) == 0 {
		fmt.Printf("No chains configured\n")
		return nil
	}

	return &cmd.RelayServerConfig{
		// store side
		StoreBackend:  viper.GetString("STORE_BACKEND"),
		DbFilePath:    viper.GetString("DB_FILE_PATH"),
		MongoUri:      viper.GetString("MONGO_URI"),
		MongoDatabase: viper.GetString("MONGO_DATABASE"),
		// audit side
		NatsUrl: viper.GetString("NATS_URL"),
		// wormhole side
		GuardianApiUrl: viper.GetString("GUARDIAN_API_URL"),
		// lifecycle loop
		TickerInterval:    viper.GetDuration("TICKER_INTERVAL"),
		PastTimeInMinutes: viper.GetInt("PAST_TIME_IN_MINUTES"),
		// Http side
		HttpIp:   viper.GetString("HTTP_IP"),
		HttpPort: viper.GetString("HTTP_PORT"),
		// per-chain settings
		Chains: chains,
	}
}

// prepareChainConfigs decodes the "chains" list of the configuration file
// into per-chain settings.
func prepareChainConfigs() []*chain.Config {
	var chains []*chain.Config
	if err := viper.UnmarshalKey("chains", &chains); err != nil {
		fmt.Printf("Error decoding chains configuration: %s\n", err)
		return nil
	}

	for _, cfg := range chains {
		if cfg.PollInterval == 0 {
			cfg.PollInterval = 15 * time.Second
		}
	}
	return chains
}
