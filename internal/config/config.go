package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ContractAddresses holds the deployed contract addresses for one chain.
type ContractAddresses struct {
	Staking common.Address
	VeHSK   common.Address
}

// defaultContracts maps supported chain ids to their deployments:
// 133 is the HashKey Chain testnet, 177 the mainnet.
var defaultContracts = map[uint64]ContractAddresses{
	133: {
		Staking: common.HexToAddress("0xe41844eAFfD946b138E133E73f55bB9dd98FEa96"),
		VeHSK:   common.HexToAddress("0xbfDA9cb158CC994e3Af5eE0F006F76126e5c9257"),
	},
	177: {
		Staking: common.HexToAddress("0xD30A4CA3b40ea4FF00e81b0471750AA9a94Ce9b1"),
		VeHSK:   common.HexToAddress("0xe1045155ee02e0997E6bB4509D854a306c50D914"),
	},
}

// Config holds all configuration for the service.
type Config struct {
	// Chain
	RPCURL      string
	ChainID     uint64
	Contracts   ContractAddresses
	DeployBlock uint64
	RPCTimeout  time.Duration

	// Operator account and optional signing key
	Operator   common.Address
	PrivateKey string

	// Redis / export queue
	RedisURL      string
	ExportsTopic  string
	ConsumerGroup string

	// Reports
	OutputDir string

	// Refresh
	RefreshInterval time.Duration

	// Logging
	LogLevel string

	// HTTP API
	HTTPEnabled bool
	HTTPAddr    string
	AdminToken  string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		ChainID:         177,
		DeployBlock:     4189965,
		RPCTimeout:      15 * time.Second,
		ExportsTopic:    "export-jobs",
		ConsumerGroup:   "export-workers",
		OutputDir:       "./reports",
		RefreshInterval: 5 * time.Minute,
		LogLevel:        "info",
	}

	// Required
	cfg.RPCURL = os.Getenv("RPC_URL")
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC_URL is required")
	}

	if v := os.Getenv("CHAIN_ID"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAIN_ID %q: %w", v, err)
		}
		cfg.ChainID = n
	}

	// Contract addresses default per chain and can be overridden.
	contracts, ok := defaultContracts[cfg.ChainID]
	if !ok && (os.Getenv("STAKING_CONTRACT") == "" || os.Getenv("VEHSK_CONTRACT") == "") {
		return nil, fmt.Errorf("no default contracts for chain %d; set STAKING_CONTRACT and VEHSK_CONTRACT", cfg.ChainID)
	}
	cfg.Contracts = contracts
	if v := os.Getenv("STAKING_CONTRACT"); v != "" {
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("invalid STAKING_CONTRACT %q", v)
		}
		cfg.Contracts.Staking = common.HexToAddress(v)
	}
	if v := os.Getenv("VEHSK_CONTRACT"); v != "" {
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("invalid VEHSK_CONTRACT %q", v)
		}
		cfg.Contracts.VeHSK = common.HexToAddress(v)
	}

	if v := os.Getenv("OPERATOR_ADDRESS"); v != "" {
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("invalid OPERATOR_ADDRESS %q", v)
		}
		cfg.Operator = common.HexToAddress(v)
	}
	cfg.PrivateKey = os.Getenv("PRIVATE_KEY")

	// Optional overrides
	if v := os.Getenv("DEPLOY_BLOCK"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.DeployBlock = n
		}
	}

	if v := os.Getenv("RPC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RPCTimeout = d
		}
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")

	if v := os.Getenv("EXPORTS_TOPIC"); v != "" {
		cfg.ExportsTopic = v
	}

	if v := os.Getenv("CONSUMER_GROUP"); v != "" {
		cfg.ConsumerGroup = v
	}

	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RefreshInterval = d
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// HTTP API Configuration
	if v := os.Getenv("HTTP_ENABLED"); v != "" {
		cfg.HTTPEnabled = v == "true" || v == "1"
	} else {
		cfg.HTTPEnabled = true
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080" // Default port
	}

	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	if cfg.AdminToken == "" {
		cfg.AdminToken = "devtoken" // Default token for development
	}

	return cfg, nil
}
