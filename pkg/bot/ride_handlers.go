package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"ridetracker/pkg/earnings"
	"ridetracker/pkg/models"
	"ridetracker/pkg/report"
)

func (b *Bot) handleRideStart(c tele.Context) error {
	sess, err := b.session(c)
	if err != nil {
		return b.fail(c, err)
	}
	sess.clear()
	sess.unlock()

	menu := &tele.ReplyMarkup{}
	var row []tele.Btn
	for _, p := range models.Platforms {
		row = append(row, menu.Data(p.Name(), "rp_"+string(p)))
	}
	menu.Inline(menu.Row(row...))
	return c.Send(msg("ride_platform"), menu)
}

func (b *Bot) handleRidePlatform(c tele.Context, sess *UserSession, raw string) error {
	p, ok := models.ParsePlatform(raw)
	if !ok {
		return c.Respond()
	}
	sess.Ride = models.RideInput{Platform: string(p)}
	sess.State = StateRideValue
	_ = c.Respond()
	_ = c.Edit(fmt.Sprintf("%s %s", msg("ride_platform"), p.Name()))
	return c.Send(msg("ride_value"))
}

func (b *Bot) handleRideText(c tele.Context, sess *UserSession) error {
	amount, ok := parseInputAmount(c.Text())
	if !ok {
		return c.Send(msg("bad_amount"))
	}
	text := amount.String()

	switch sess.State {
	case StateRideValue:
		sess.Ride.Value = text
		sess.State = StateRideBonus
		return c.Send(msg("ride_bonus"))
	case StateRideBonus:
		sess.Ride.Bonus = text
		if models.Platform(sess.Ride.Platform) == models.PlatformUber {
			return b.saveRide(c, sess)
		}
		sess.State = StateRideMultiplier
		return c.Send(msg("ride_mult"))
	case StateRideMultiplier:
		sess.Ride.Multiplier = text
		return b.saveRide(c, sess)
	}
	return nil
}

func (b *Bot) saveRide(c tele.Context, sess *UserSession) error {
	in := sess.Ride
	sess.clear()

	ride, summary, err := b.Svc.Ride().AddRide(context.Background(), sess.UserID, in)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(fmt.Sprintf(msg("ride_saved"), ride.Platform.Name(), report.Money(ride.TotalEarnings), summaryText(summary)), tele.ModeHTML)
}

func (b *Bot) handleExpenseStart(c tele.Context) error {
	sess, err := b.session(c)
	if err != nil {
		return b.fail(c, err)
	}
	defer sess.unlock()
	sess.clear()
	sess.State = StateExpenseFuel
	return c.Send(msg("expense_fuel"))
}

func (b *Bot) handleExpenseText(c tele.Context, sess *UserSession) error {
	amount, ok := parseInputAmount(c.Text())
	if !ok {
		return c.Send(msg("bad_amount"))
	}
	text := amount.String()

	switch sess.State {
	case StateExpenseFuel:
		sess.Expense.Fuel = text
		sess.State = StateExpenseFood
		return c.Send(msg("expense_food"))
	case StateExpenseFood:
		sess.Expense.Food = text
		sess.State = StateExpenseToll
		return c.Send(msg("expense_toll"))
	case StateExpenseToll:
		sess.Expense.Toll = text
		sess.State = StateExpenseOther
		return c.Send(msg("expense_other"))
	case StateExpenseOther:
		sess.Expense.Other = text
	}

	in := sess.Expense
	sess.clear()

	expense, summary, err := b.Svc.Expense().AddExpense(context.Background(), sess.UserID, b.now(), in)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(fmt.Sprintf(msg("expense_saved"), report.Money(expense.Total), summaryText(summary)), tele.ModeHTML)
}

// parseInputAmount accepts what a driver would type: "25", "25,50",
// "R$ 25.50". Text that is not a plain number is rejected instead of being
// stored as zero.
func parseInputAmount(text string) (decimal.Decimal, bool) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "R$")
	return earnings.ParseLiteral(text)
}
