package config

import "time"

// Config is the registry module configuration.
type Config struct {
	// APIHandlers lists enabled API surfaces. Currently only "http".
	APIHandlers []string `mapstructure:"api_handlers"`

	// CidMapPath is the JSON mapping file from checker image ids to
	// content addresses.
	CidMapPath string `mapstructure:"cidmap_path"`

	// TempDir receives uploaded files before they are handed to the
	// checker and the pinning gateway. Defaults to the OS temp dir.
	TempDir string `mapstructure:"temp_dir"`

	Checker Checker `mapstructure:"checker"`
	Pinata  Pinata  `mapstructure:"pinata"`
	Ledger  Ledger  `mapstructure:"ledger"`
}

// Checker configures the out-of-process similarity engine.
type Checker struct {
	// PythonBin is the interpreter used to run the checker script.
	PythonBin string `mapstructure:"python_bin"`

	// ScriptPath is the checker entrypoint, e.g. ./checker.py
	ScriptPath string `mapstructure:"script_path"`

	// InsertThreshold is the authoritative dedup boundary enforced by
	// the checker's insert mode.
	InsertThreshold float64 `mapstructure:"insert_threshold"`

	// QueryThreshold is the tight short-circuit threshold for the
	// pre-insert top-1 query.
	QueryThreshold float64 `mapstructure:"query_threshold"`
}

// Pinata configures the pinning gateway client.
type Pinata struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	GatewayURL string `mapstructure:"gateway_url"`
}

// Ledger configures the EVM ledger client and the transaction poller.
type Ledger struct {
	RPCURL     string `mapstructure:"rpc_url"`
	PrivateKey string `mapstructure:"private_key"`
	ChainID    int64  `mapstructure:"chain_id"`

	RegistryAddress       string `mapstructure:"registry_address"`
	LicenseManagerAddress string `mapstructure:"license_manager_address"`
	OracleAddress         string `mapstructure:"oracle_address"`

	// ExplorerURL is the block explorer base used in timeout responses,
	// e.g. https://sepolia.etherscan.io
	ExplorerURL string `mapstructure:"explorer_url"`

	// SecondaryCurrency is the oracle symbol used to derive display
	// prices, e.g. "AUD".
	SecondaryCurrency string `mapstructure:"secondary_currency"`

	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PollMaxAttempts int           `mapstructure:"poll_max_attempts"`
}
