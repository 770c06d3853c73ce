package export

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestEtherFormatting(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "1.5", Ether(wei))
	assert.Equal(t, "0", Ether(nil))
	assert.Equal(t, "0", Ether(new(big.Int)))

	small := big.NewInt(1) // 1 wei
	assert.Equal(t, "0.000000000000000001", Ether(small))

	assert.InDelta(t, 1.5, EtherNumber(wei), 1e-9)
}

func TestWriteJSONStringAmounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	payload := map[string]string{
		"principal": BaseUnits(big.NewInt(1000)),
		"reward":    BaseUnits(nil),
	}
	require.NoError(t, WriteJSON(path, payload))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "1000", got["principal"])
	assert.Equal(t, "0", got["reward"])

	// No stray temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteLockedUnstakeSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.xlsx")

	rows := []LockedUnstakeRow{{
		User:        "0x1111111111111111111111111111111111111111",
		HskAmount:   1.5,
		StakeID:     "3",
		BlockNumber: "4200000",
		TxHash:      "0xabc",
		Reward:      0.25,
	}}
	require.NoError(t, WriteLockedUnstakeSheet(path, rows))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Unstake Rewards")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, lockedUnstakeHeaders, got[0])
	assert.Equal(t, "0x1111111111111111111111111111111111111111", got[1][0])
	assert.Equal(t, "1.5", got[1][1])
	assert.Equal(t, "3", got[1][2])
}

func TestWriteFlexibleUnstakeSheetEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flexible.xlsx")
	require.NoError(t, WriteFlexibleUnstakeSheet(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Flexible Unstake Requests")
	require.NoError(t, err)
	require.Len(t, got, 1, "header row only")
	assert.Equal(t, flexibleUnstakeHeaders, got[0])
}
