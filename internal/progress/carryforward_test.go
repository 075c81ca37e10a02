package progress

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFirstLineFromContract(t *testing.T) {
	t.Run("normal line opens at zero", func(t *testing.T) {
		line := firstLineFromContract(models.ContractLine{
			Position:    3,
			Kind:        enums.LineKindNormal,
			Description: "Cloison placo BA13",
			Unit:        "m2",
			UnitPrice:   dec("45.00"),
			Quantity:    dec("120.000"),
			Total:       dec("5400.00"),
		})

		assert.Equal(t, 3, line.Position)
		assert.True(t, line.UnitPrice.Equal(dec("45.00")))
		assert.True(t, line.PreviousQty.IsZero())
		assert.True(t, line.CurrentQty.IsZero())
		assert.True(t, line.TotalQty.IsZero())
		assert.True(t, line.PreviousAmount.IsZero())
		assert.True(t, line.CurrentAmount.IsZero())
		assert.True(t, line.TotalAmount.IsZero())
	})

	t.Run("title line carries no numerics", func(t *testing.T) {
		line := firstLineFromContract(models.ContractLine{
			Position:    1,
			Kind:        enums.LineKindTitle,
			Description: "LOT 2 - PLATRERIE",
			UnitPrice:   dec("99.00"),
		})

		assert.Equal(t, enums.LineKindTitle, line.Kind)
		assert.True(t, line.UnitPrice.IsZero())
	})
}

func TestNextLineFromPrevious(t *testing.T) {
	prev := models.ProgressLine{
		Position:       2,
		Kind:           enums.LineKindNormal,
		Description:    "Peinture murs",
		Unit:           "m2",
		UnitPrice:      dec("12.50"),
		PreviousQty:    dec("10.000"),
		CurrentQty:     dec("20.000"),
		TotalQty:       dec("30.000"),
		PreviousAmount: dec("125.00"),
		CurrentAmount:  dec("250.00"),
		TotalAmount:    dec("375.00"),
	}

	line := nextLineFromPrevious(prev)

	assert.True(t, line.PreviousQty.Equal(dec("30.000")), "previous quantity must equal prior cumulative")
	assert.True(t, line.CurrentQty.IsZero())
	assert.True(t, line.TotalQty.Equal(dec("30.000")))
	assert.True(t, line.PreviousAmount.Equal(dec("375.00")), "previous amount must equal prior cumulative")
	assert.True(t, line.CurrentAmount.IsZero())
	assert.True(t, line.TotalAmount.Equal(dec("375.00")))
}

func TestLineFromInput(t *testing.T) {
	previous := []models.ProgressLine{
		{
			Position:    1,
			Kind:        enums.LineKindNormal,
			Description: "Cloison placo BA13",
			Unit:        "m2",
			UnitPrice:   dec("45.00"),
			TotalQty:    dec("40.000"),
			TotalAmount: dec("1800.00"),
		},
	}

	t.Run("derives previous from reconciled line", func(t *testing.T) {
		line := lineFromInput(LineInput{
			Position:    1,
			Kind:        enums.LineKindNormal,
			Description: "cloison  PLACO ba13",
			Unit:        "m2",
			UnitPrice:   dec("45.01"),
			CurrentQty:  dec("10.000"),
		}, previous)

		assert.True(t, line.PreviousQty.Equal(dec("40.000")))
		assert.True(t, line.PreviousAmount.Equal(dec("1800.00")))
		assert.True(t, line.CurrentAmount.Equal(dec("450.10")), "current amount defaults to qty * price")
		assert.True(t, line.TotalQty.Equal(dec("50.000")))
		assert.True(t, line.TotalAmount.Equal(dec("2250.10")))
	})

	t.Run("explicit values are authoritative", func(t *testing.T) {
		prevQty := dec("5.000")
		prevAmount := dec("200.00")
		currentAmount := dec("999.99")
		line := lineFromInput(LineInput{
			Position:       1,
			Kind:           enums.LineKindNormal,
			Description:    "Cloison placo BA13",
			Unit:           "m2",
			UnitPrice:      dec("45.00"),
			PreviousQty:    &prevQty,
			CurrentQty:     dec("2.000"),
			PreviousAmount: &prevAmount,
			CurrentAmount:  &currentAmount,
		}, previous)

		assert.True(t, line.PreviousQty.Equal(dec("5.000")))
		assert.True(t, line.CurrentAmount.Equal(dec("999.99")))
		assert.True(t, line.TotalQty.Equal(dec("7.000")), "total is always previous plus current")
		assert.True(t, line.TotalAmount.Equal(dec("1199.99")))
	})

	t.Run("new line without history opens at zero previous", func(t *testing.T) {
		line := lineFromInput(LineInput{
			Position:    9,
			Kind:        enums.LineKindNormal,
			Description: "Reprise enduit",
			Unit:        "m2",
			UnitPrice:   dec("18.00"),
			CurrentQty:  dec("4.000"),
		}, previous)

		assert.True(t, line.PreviousQty.IsZero())
		assert.True(t, line.PreviousAmount.IsZero())
		assert.True(t, line.TotalAmount.Equal(dec("72.00")))
	})
}

func TestLumpSumAmendment(t *testing.T) {
	amendment := lumpSumAmendment("Devis TS-012 plus-value carrelage", dec("1500.00"), nil)

	assert.True(t, amendment.PreviousQty.IsZero())
	assert.True(t, amendment.CurrentQty.Equal(dec("1")))
	assert.True(t, amendment.TotalQty.Equal(dec("1")))
	assert.True(t, amendment.PreviousAmount.IsZero())
	assert.True(t, amendment.CurrentAmount.Equal(dec("1500.00")))
	assert.True(t, amendment.TotalAmount.Equal(dec("1500.00")))
}

func TestComputeTotals(t *testing.T) {
	state := models.ProgressState{
		Lines: []models.ProgressLine{
			{Kind: enums.LineKindTitle},
			{
				Kind:           enums.LineKindNormal,
				PreviousAmount: dec("100.00"),
				CurrentAmount:  dec("50.00"),
				TotalAmount:    dec("150.00"),
			},
			{
				Kind:           enums.LineKindNormal,
				PreviousAmount: dec("20.00"),
				CurrentAmount:  dec("30.00"),
				TotalAmount:    dec("50.00"),
			},
		},
		Amendments: []models.Amendment{
			{
				PreviousAmount: dec("0.00"),
				CurrentAmount:  dec("500.00"),
				TotalAmount:    dec("500.00"),
			},
		},
	}

	totals := ComputeTotals(state)

	require.True(t, totals.LinesCurrentAmount.Equal(dec("80.00")))
	require.True(t, totals.AmendmentsCurrentAmount.Equal(dec("500.00")))
	require.True(t, totals.CurrentAmount.Equal(dec("580.00")))
	require.True(t, totals.PreviousAmount.Equal(dec("120.00")))
	require.True(t, totals.CumulativeAmount.Equal(dec("700.00")))
}
