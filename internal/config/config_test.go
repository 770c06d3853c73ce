package config

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresRPCURL(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPC_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RPC_URL", "https://mainnet.hsk.xyz")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(177), cfg.ChainID)
	assert.Equal(t, uint64(4189965), cfg.DeployBlock)
	assert.Equal(t, common.HexToAddress("0xD30A4CA3b40ea4FF00e81b0471750AA9a94Ce9b1"), cfg.Contracts.Staking)
	assert.Equal(t, common.HexToAddress("0xe1045155ee02e0997E6bB4509D854a306c50D914"), cfg.Contracts.VeHSK)
	assert.Equal(t, "export-jobs", cfg.ExportsTopic)
	assert.Equal(t, "export-workers", cfg.ConsumerGroup)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.True(t, cfg.HTTPEnabled)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "devtoken", cfg.AdminToken)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadTestnetContracts(t *testing.T) {
	t.Setenv("RPC_URL", "https://testnet.hsk.xyz")
	t.Setenv("CHAIN_ID", "133")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0xe41844eAFfD946b138E133E73f55bB9dd98FEa96"), cfg.Contracts.Staking)
	assert.Equal(t, common.HexToAddress("0xbfDA9cb158CC994e3Af5eE0F006F76126e5c9257"), cfg.Contracts.VeHSK)
}

func TestLoadUnknownChainNeedsExplicitContracts(t *testing.T) {
	t.Setenv("RPC_URL", "https://devnet.hsk.xyz")
	t.Setenv("CHAIN_ID", "31337")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("STAKING_CONTRACT", "0x0000000000000000000000000000000000000001")
	t.Setenv("VEHSK_CONTRACT", "0x0000000000000000000000000000000000000002")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x0000000000000000000000000000000000000001"), cfg.Contracts.Staking)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RPC_URL", "https://mainnet.hsk.xyz")
	t.Setenv("DEPLOY_BLOCK", "5000000")
	t.Setenv("REFRESH_INTERVAL", "30s")
	t.Setenv("HTTP_ENABLED", "false")
	t.Setenv("OPERATOR_ADDRESS", "0x1111111111111111111111111111111111111111")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(5000000), cfg.DeployBlock)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.False(t, cfg.HTTPEnabled)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), cfg.Operator)
}

func TestLoadRejectsBadAddresses(t *testing.T) {
	t.Setenv("RPC_URL", "https://mainnet.hsk.xyz")
	t.Setenv("STAKING_CONTRACT", "not-an-address")

	_, err := Load()
	require.Error(t, err)
}
