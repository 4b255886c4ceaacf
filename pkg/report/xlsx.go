package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"ridetracker/pkg/models"
)

const (
	summarySheet = "Resumo"
	ridesSheet   = "Corridas"
)

// Workbook builds a two-sheet workbook: the day summary and the ride list.
// Money cells are numeric so they can be summed in the spreadsheet.
func Workbook(s models.DailySummary, rides []*models.Ride) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(ridesSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	if err := writeSummarySheet(f, s, headerStyle); err != nil {
		return nil, err
	}
	if err := writeRidesSheet(f, rides, headerStyle); err != nil {
		return nil, err
	}
	return f, nil
}

func WriteWorkbook(w io.Writer, s models.DailySummary, rides []*models.Ride) error {
	f, err := Workbook(s, rides)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

func writeSummarySheet(f *excelize.File, s models.DailySummary, headerStyle int) error {
	rows := [][]interface{}{
		{"Métrica", "Valor"},
		{"Data", FormatDate(s.Date)},
		{"Total de Ganhos", s.TotalEarnings.InexactFloat64()},
		{"Total de Despesas", s.TotalExpenses.InexactFloat64()},
		{"Lucro Líquido", s.NetProfit.InexactFloat64()},
		{"Tempo Online", OnlineTime(s.TimeOnline)},
		{"Total de Corridas", s.TotalRides},
		{"Bônus Total", s.TotalBonus.InexactFloat64()},
		{},
		{"Ganhos por Plataforma"},
	}
	for _, p := range models.Platforms {
		rows = append(rows, []interface{}{p.Name(), s.EarningsByPlatform.Get(p).InexactFloat64()})
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "B", 24)
}

func writeRidesSheet(f *excelize.File, rides []*models.Ride, headerStyle int) error {
	header := make([]interface{}, len(rideHeaders))
	for i, h := range rideHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ridesSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range rides {
		multiplier := 1.0
		if r.Multiplier.Valid {
			multiplier = r.Multiplier.Decimal.InexactFloat64()
		}
		category := r.Category
		if category == "" {
			category = "-"
		}
		row := []interface{}{
			r.Date.Format(dateTimeLayout),
			strings.ToUpper(string(r.Platform)),
			r.Value.InexactFloat64(),
			r.Distance.InexactFloat64(),
			r.Duration,
			category,
			r.Bonus.InexactFloat64(),
			multiplier,
			r.TotalEarnings.InexactFloat64(),
		}
		if err := f.SetSheetRow(ridesSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(ridesSheet, "A1", "I1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(ridesSheet, "A", "A", 20); err != nil {
		return err
	}
	return f.SetColWidth(ridesSheet, "B", "I", 14)
}
