package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LockedUnstakeRow is one row of the locked unstake rewards sheet.
type LockedUnstakeRow struct {
	User        string
	HskAmount   float64
	StakeID     string
	BlockNumber string
	TxHash      string
	Reward      float64
}

// FlexibleUnstakeRow is one row of the flexible unstake requests sheet.
type FlexibleUnstakeRow struct {
	User             string
	HskAmount        float64
	StakeID          string
	RequestBlock     string
	TxHash           string
	CalculatedReward float64
	ClaimableBlock   string
}

var lockedUnstakeHeaders = []string{
	"User", "HSK Amount", "Stake ID", "Block Number", "Transaction Hash", "Reward",
}

var flexibleUnstakeHeaders = []string{
	"User", "HSK Amount", "Stake ID", "Request Block Number", "Transaction Hash",
	"Calculated Reward", "Claimable Block",
}

// WriteLockedUnstakeSheet writes the locked unstake rewards workbook.
func WriteLockedUnstakeSheet(path string, rows []LockedUnstakeRow) error {
	cells := make([][]any, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []any{
			r.User, r.HskAmount, r.StakeID, r.BlockNumber, r.TxHash, r.Reward,
		})
	}
	return writeSheet(path, "Unstake Rewards", lockedUnstakeHeaders, cells)
}

// WriteFlexibleUnstakeSheet writes the flexible unstake requests workbook.
func WriteFlexibleUnstakeSheet(path string, rows []FlexibleUnstakeRow) error {
	cells := make([][]any, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []any{
			r.User, r.HskAmount, r.StakeID, r.RequestBlock, r.TxHash,
			r.CalculatedReward, r.ClaimableBlock,
		})
	}
	return writeSheet(path, "Flexible Unstake Requests", flexibleUnstakeHeaders, cells)
}

// writeSheet writes a single-sheet workbook with a header row.
func writeSheet(path, sheet string, headers []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, toAny(headers)); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", rowNum, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
