package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// FormatEntry formats a freshly opened position.
func FormatEntry(pos *model.Position) string {
	rsi, _ := pos.Annotations["rsi_entry"].(float64)
	adx, _ := pos.Annotations["adx_entry"].(float64)
	if pos.Direction == model.DirectionLong {
		return fmt.Sprintf("🚀 *Compra %s* | P:%.4f RSI:%.1f ADX:%.1f",
			pos.Symbol, pos.EntryPrice, rsi, adx)
	}
	zone, _ := pos.Annotations["short_entry_zone"].(string)
	return fmt.Sprintf("🔻 *Venta %s* | P:%.4f RSI:%.1f ADX:%.1f Z:%s",
		pos.Symbol, pos.EntryPrice, rsi, adx, zone)
}

// FormatFirstTarget formats a non-terminal first-target hit.
func FormatFirstTarget(pos *model.Position, price, level float64) string {
	return fmt.Sprintf("✅ *TP1 %s %s* | P: %.4f TP1: %.4f",
		pos.Direction, pos.Symbol, price, level)
}

// FormatSecondTarget formats a take-profit close.
func FormatSecondTarget(pos *model.Position, price, level float64) string {
	return fmt.Sprintf("🎯 *TP2 %s %s* | P: %.4f TP2: %.4f",
		pos.Direction, pos.Symbol, price, level)
}

// FormatStopLoss formats a stop-loss close.
func FormatStopLoss(pos *model.Position, price, level float64) string {
	return fmt.Sprintf("🛑 *SL %s %s* | P: %.4f SL: %.4f",
		pos.Direction, pos.Symbol, price, level)
}

// FormatDailySummary formats the previous day's win/loss tally.
func FormatDailySummary(day string, wins, losses, total int) string {
	return fmt.Sprintf("📊 *RESUMEN (%s)* 📊\nG: %d | P: %d | T: %d", day, wins, losses, total)
}

// FormatPivotsUpdated announces a completed daily pivot refresh.
func FormatPivotsUpdated(day string, count int) string {
	return fmt.Sprintf("⭐️ *PIVOTES ACTUALIZADOS* %s (%d pares).", day, count)
}

// FormatStatus formats the open-position set for the /status command.
func FormatStatus(active map[string]*model.Position) string {
	if len(active) == 0 {
		return "Sin posiciones abiertas."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 *Posiciones abiertas: %d*\n", len(active)))
	for _, pos := range active {
		flag := ""
		if pos.TP1Hit {
			flag = " (TP1✅)"
		}
		b.WriteString(fmt.Sprintf("• %s %s @ %.4f%s | desde %s\n",
			pos.Direction, pos.Symbol, pos.EntryPrice, flag,
			pos.EntryTime.UTC().Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatClosedSummary formats the all-time closed tally for /summary.
func FormatClosedSummary(closed []model.Position) string {
	var wins, losses int
	for _, p := range closed {
		switch p.Status {
		case model.StatusClosedTP:
			wins++
		case model.StatusClosedSL:
			losses++
		}
	}
	return fmt.Sprintf("📈 *Historial* | G: %d | P: %d | T: %d", wins, losses, len(closed))
}

// FormatPivotFreshness reports the pivot snapshot state for /pivots.
func FormatPivotFreshness(count int, day string, now time.Time) string {
	today := now.UTC().Format("2006-01-02")
	state := "vigentes"
	if day != today {
		state = "obsoletos"
	}
	return fmt.Sprintf("⭐️ Pivotes: %d pares, fecha %s (%s)", count, day, state)
}
