// Package report renders a day's summary and rides as CSV or XLSX.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"ridetracker/pkg/models"
)

const (
	dateTimeLayout = "02/01/2006 15:04:05"
	dateLayout     = "02/01/2006"

	utf8BOM = "\ufeff"
)

var rideHeaders = []string{
	"Data",
	"Plataforma",
	"Valor (R$)",
	"Distância (km)",
	"Duração (min)",
	"Categoria",
	"Bônus (R$)",
	"Multiplicador",
	"Total (R$)",
}

// WriteRidesCSV writes one row per ride. Like every CSV here it starts with
// a BOM so spreadsheet tools pick up the UTF-8 headers.
func WriteRidesCSV(w io.Writer, rides []*models.Ride) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := writeRides(cw, rides); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func WriteSummaryCSV(w io.Writer, s models.DailySummary) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(summaryRows(s)); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCompleteReport writes the summary block followed by the rides block.
func WriteCompleteReport(w io.Writer, s models.DailySummary, rides []*models.Ride) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"=== RESUMO DO DIA ==="}); err != nil {
		return err
	}
	if err := cw.WriteAll(summaryRows(s)); err != nil {
		return err
	}
	if err := cw.WriteAll([][]string{{""}, {""}, {"=== DETALHES DAS CORRIDAS ==="}}); err != nil {
		return err
	}
	if err := writeRides(cw, rides); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeRides(cw *csv.Writer, rides []*models.Ride) error {
	if err := cw.Write(rideHeaders); err != nil {
		return err
	}
	for _, r := range rides {
		if err := cw.Write(rideRow(r)); err != nil {
			return err
		}
	}
	return nil
}

func rideRow(r *models.Ride) []string {
	category := r.Category
	if category == "" {
		category = "-"
	}
	multiplier := "1"
	if r.Multiplier.Valid {
		multiplier = r.Multiplier.Decimal.String()
	}
	return []string{
		r.Date.Format(dateTimeLayout),
		strings.ToUpper(string(r.Platform)),
		r.Value.StringFixed(2),
		r.Distance.StringFixed(1),
		fmt.Sprint(r.Duration),
		category,
		r.Bonus.StringFixed(2),
		multiplier,
		r.TotalEarnings.StringFixed(2),
	}
}

func summaryRows(s models.DailySummary) [][]string {
	return [][]string{
		{"Métrica", "Valor"},
		{"Data", FormatDate(s.Date)},
		{"Total de Ganhos", Money(s.TotalEarnings)},
		{"Total de Despesas", Money(s.TotalExpenses)},
		{"Lucro Líquido", Money(s.NetProfit)},
		{"Tempo Online", OnlineTime(s.TimeOnline)},
		{"Total de Corridas", fmt.Sprint(s.TotalRides)},
		{"Bônus Total", Money(s.TotalBonus)},
		{"", ""},
		{"Ganhos por Plataforma", ""},
		{models.PlatformUber.Name(), Money(s.EarningsByPlatform.Uber)},
		{models.Platform99.Name(), Money(s.EarningsByPlatform.NinetyNine)},
		{models.PlatformInDriver.Name(), Money(s.EarningsByPlatform.InDriver)},
	}
}

func Money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// OnlineTime renders minutes as "3h 07m".
func OnlineTime(minutes int) string {
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
