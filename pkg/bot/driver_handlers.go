package bot

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/models"
	"ridetracker/pkg/report"
)

func (b *Bot) handleSummary(c tele.Context) error {
	user, err := b.currentUser(c)
	if err != nil {
		return b.fail(c, err)
	}
	summary, err := b.Svc.Ride().GetDailySummary(context.Background(), user.ID, b.now())
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(summaryText(summary), tele.ModeHTML)
}

func (b *Bot) handleToggleOnline(c tele.Context) error {
	user, err := b.currentUser(c)
	if err != nil {
		return b.fail(c, err)
	}
	state, err := b.Svc.Session().Toggle(context.Background(), user.ID)
	if err != nil {
		return b.fail(c, err)
	}
	if state.Online {
		return c.Send(fmt.Sprintf(msg("online_on"), state.Session.StartTime.In(b.Loc).Format("15:04")))
	}
	minutes := 0
	if state.Session != nil && state.Session.DurationMinutes != nil {
		minutes = *state.Session.DurationMinutes
	}
	return c.Send(fmt.Sprintf(msg("online_off"), minutes))
}

func (b *Bot) handleRanking(c tele.Context) error {
	user, err := b.currentUser(c)
	if err != nil {
		return b.fail(c, err)
	}
	if user.City == "" {
		return c.Send(msg("no_city"))
	}
	city, entries, err := b.Svc.Ranking().ForUser(context.Background(), user.ID, b.now())
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(rankingText(city, entries, user.ID), tele.ModeHTML)
}

func (b *Bot) handleProfile(c tele.Context) error {
	user, err := b.currentUser(c)
	if err != nil {
		return b.fail(c, err)
	}
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(
		menu.Data("🏙 Cidade", "prof_city"),
		menu.Data("📸 Instagram", "prof_insta"),
	))
	return c.Send(fmt.Sprintf(msg("profile"), user.Name, orDash(user.City), orDash(user.Instagram)), menu)
}

func (b *Bot) handleProfileText(c tele.Context, sess *UserSession) error {
	ctx := context.Background()
	text := strings.TrimSpace(c.Text())

	var err error
	switch sess.State {
	case StateCity:
		err = b.Svc.User().SetCity(ctx, sess.UserID, text)
	case StateInstagram:
		err = b.Svc.User().SetInstagram(ctx, sess.UserID, text)
	}
	if err != nil {
		// Invalid input keeps the prompt open for another try.
		if !apperr.Is(err, apperr.KindValidation) {
			sess.clear()
		}
		return b.fail(c, err)
	}
	sess.clear()
	if err := c.Send(msg("saved")); err != nil {
		return err
	}
	return b.handleProfile(c)
}

func (b *Bot) handleExport(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(
		menu.Data("📄 CSV", "exp_csv"),
		menu.Data("📊 Excel", "exp_xlsx"),
	))
	return c.Send(msg("export"), menu)
}

func (b *Bot) handleExportFormat(c tele.Context, sess *UserSession, format string) error {
	_ = c.Respond()
	summary, rides, err := b.Svc.Ride().DayReport(context.Background(), sess.UserID, b.now())
	if err != nil {
		return b.fail(c, err)
	}

	var buf bytes.Buffer
	var name string
	switch format {
	case "csv":
		err = report.WriteCompleteReport(&buf, summary, rides)
		name = report.Filename("relatorio_completo", summary.Date, "csv")
	case "xlsx":
		err = report.WriteWorkbook(&buf, summary, rides)
		name = report.Filename("relatorio_completo", summary.Date, "xlsx")
	default:
		return nil
	}
	if err != nil {
		return b.fail(c, err)
	}

	doc := &tele.Document{
		File:     tele.FromReader(&buf),
		FileName: name,
		Caption:  fmt.Sprintf("📁 Relatório %s", report.FormatDate(summary.Date)),
	}
	return c.Send(doc)
}

func (b *Bot) handlePlatforms(c tele.Context) error {
	user, err := b.currentUser(c)
	if err != nil {
		return b.fail(c, err)
	}
	statuses, err := b.Svc.Platform().Status(context.Background(), user.ID)
	if err != nil {
		return b.fail(c, err)
	}

	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, st := range statuses {
		if !st.IsAvailable {
			continue
		}
		if st.IsConnected {
			rows = append(rows, menu.Row(
				menu.Data("🔄 Sincronizar "+st.Name, "plat_sync_"+string(st.Platform)),
				menu.Data("🔌 Desconectar", "plat_disc_"+string(st.Platform)),
			))
			continue
		}
		rows = append(rows, menu.Row(menu.Data("🔗 Conectar "+st.Name, "plat_conn_"+string(st.Platform))))
	}
	menu.Inline(rows...)
	return c.Send(platformsText(statuses), menu)
}

// handlePlatformAction runs "conn_<p>", "sync_<p>" and "disc_<p>" callbacks.
func (b *Bot) handlePlatformAction(c tele.Context, sess *UserSession, action string) error {
	verb, raw, ok := strings.Cut(action, "_")
	if !ok {
		return c.Respond()
	}
	p, ok := models.ParsePlatform(raw)
	if !ok {
		return c.Respond()
	}
	_ = c.Respond()
	ctx := context.Background()

	switch verb {
	case "conn":
		authURL, err := b.Svc.Platform().Connect(ctx, sess.UserID, p)
		if err != nil {
			return b.fail(c, err)
		}
		menu := &tele.ReplyMarkup{}
		menu.Inline(menu.Row(menu.URL("Autorizar "+p.Name(), authURL)))
		return c.Send(msg("connect_uber"), menu)
	case "sync":
		now := b.now()
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.Loc).AddDate(0, 0, -7)
		res, err := b.Svc.Platform().Sync(ctx, sess.UserID, p, from, now)
		if err != nil {
			return b.fail(c, err)
		}
		return c.Send(fmt.Sprintf(msg("synced"), p.Name(), res.RidesCount, res.Skipped))
	case "disc":
		if err := b.Svc.Platform().Disconnect(ctx, sess.UserID, p); err != nil {
			return b.fail(c, err)
		}
		return c.Send(fmt.Sprintf(msg("disconnected"), p.Name()))
	}
	return nil
}

func (b *Bot) handleAPIToken(c tele.Context) error {
	user, err := b.currentUser(c)
	if err != nil {
		return b.fail(c, err)
	}
	token, err := b.Signer.IssueAPIToken(user.ID, apiTokenTTL)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(fmt.Sprintf(msg("api_token"), token), tele.ModeHTML)
}

func summaryText(s models.DailySummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Resumo de %s</b>\n\n", report.FormatDate(s.Date))
	fmt.Fprintf(&sb, "💰 Ganhos: %s\n", report.Money(s.TotalEarnings))
	fmt.Fprintf(&sb, "⛽ Despesas: %s\n", report.Money(s.TotalExpenses))
	fmt.Fprintf(&sb, "📈 Lucro líquido: %s\n", report.Money(s.NetProfit))
	fmt.Fprintf(&sb, "🎁 Bônus: %s\n", report.Money(s.TotalBonus))
	fmt.Fprintf(&sb, "🚗 Corridas: %d\n", s.TotalRides)
	fmt.Fprintf(&sb, "⏱ Online: %s\n\n", report.OnlineTime(s.TimeOnline))
	for _, p := range models.Platforms {
		fmt.Fprintf(&sb, "%s: %s\n", p.Name(), report.Money(s.EarningsByPlatform.Get(p)))
	}
	return sb.String()
}

func rankingText(city string, entries []models.RankingEntry, me string) string {
	if len(entries) == 0 {
		return fmt.Sprintf(msg("ranking_empty"), html.EscapeString(city))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 <b>Ranking de %s</b>\n\n", html.EscapeString(city))
	for _, e := range entries {
		name := html.EscapeString(e.Name)
		if e.Instagram != "" {
			name += " (" + html.EscapeString(e.Instagram) + ")"
		}
		line := fmt.Sprintf("%d. %s: %s, %d corridas", e.Position, name, report.Money(e.TotalEarnings), e.RidesCount)
		if e.UserID == me {
			line = "<b>" + line + "</b>"
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func platformsText(statuses []models.PlatformStatus) string {
	var sb strings.Builder
	sb.WriteString(msg("platforms") + "\n\n")
	for _, st := range statuses {
		switch {
		case st.IsConnected:
			fmt.Fprintf(&sb, "✅ %s: conectada\n", st.Name)
		case st.IsAvailable:
			fmt.Fprintf(&sb, "⚪ %s: não conectada\n", st.Name)
		default:
			fmt.Fprintf(&sb, "🔒 %s: sem API pública, registre manualmente\n", st.Name)
		}
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
