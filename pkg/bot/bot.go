package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/pkg/secure"
	"ridetracker/service"
)

// UserSession is one chat's conversation state. Handlers hold mu for as
// long as they read or advance it, so updates from one driver run in order.
type UserSession struct {
	mu sync.Mutex

	UserID  string
	State   string
	Ride    models.RideInput
	Expense models.ExpenseInput
}

// clear drops any conversation in progress. Caller holds mu.
func (s *UserSession) clear() {
	s.State = StateIdle
	s.Ride = models.RideInput{}
	s.Expense = models.ExpenseInput{}
}

func (s *UserSession) unlock() {
	s.mu.Unlock()
}

// sessionStore maps chats to their sessions. telebot dispatches updates
// concurrently: the store mutex guards the map, each session's own mutex
// guards its fields.
type sessionStore struct {
	mu sync.Mutex
	m  map[int64]*UserSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{m: make(map[int64]*UserSession)}
}

// acquire returns the chat's session locked. Release it with unlock.
func (s *sessionStore) acquire(teleID int64, userID string) *UserSession {
	s.mu.Lock()
	sess, ok := s.m[teleID]
	if !ok {
		sess = &UserSession{State: StateIdle}
		s.m[teleID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	sess.UserID = userID
	return sess
}

type Bot struct {
	Bot      *tele.Bot
	Log      logger.ILogger
	Svc      service.IServiceManager
	Signer   *secure.Signer
	Loc      *time.Location
	Sessions *sessionStore
}

const (
	StateIdle = "idle"

	StateRideValue      = "awaiting_ride_value"
	StateRideBonus      = "awaiting_ride_bonus"
	StateRideMultiplier = "awaiting_ride_multiplier"

	StateExpenseFuel  = "awaiting_expense_fuel"
	StateExpenseFood  = "awaiting_expense_food"
	StateExpenseToll  = "awaiting_expense_toll"
	StateExpenseOther = "awaiting_expense_other"

	StateCity      = "awaiting_city"
	StateInstagram = "awaiting_instagram"
)

const (
	btnAddRide   = "➕ Nova corrida"
	btnExpenses  = "⛽ Despesas"
	btnOnline    = "⏱ Online/Offline"
	btnSummary   = "📊 Resumo do dia"
	btnRanking   = "🏆 Ranking"
	btnExport    = "📁 Exportar"
	btnPlatforms = "🔗 Plataformas"
	btnProfile   = "⚙️ Perfil"
)

const apiTokenTTL = 30 * 24 * time.Hour

func New(token string, svc service.IServiceManager, signer *secure.Signer, loc *time.Location, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("telegram handler failed", logger.Error(err))
		},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	bot := &Bot{
		Bot:      b,
		Log:      log,
		Svc:      svc,
		Signer:   signer,
		Loc:      loc,
		Sessions: newSessionStore(),
	}
	bot.registerHandlers()
	return bot, nil
}

func (b *Bot) Start() {
	b.Log.Info("telegram bot started", logger.String("username", b.Bot.Me.Username))
	b.Bot.Start()
}

func (b *Bot) now() time.Time {
	return time.Now().In(b.Loc)
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

var messages = map[string]map[string]string{
	"pt": {
		"welcome":       "👋 Olá, %s! Registre suas corridas, despesas e tempo online.",
		"share_contact": "📱 Compartilhar telefone",
		"contact_msg":   "Se quiser, compartilhe seu telefone para completar o perfil.",
		"phone_saved":   "✅ Telefone salvo.",
		"own_contact":   "Envie o seu próprio contato.",
		"blocked":       "🚫 Sua conta está bloqueada.",
		"menu":          "📋 Menu principal:",
		"error":         "❌ Algo deu errado. Tente novamente.",
		"ride_platform": "🚗 Qual plataforma?",
		"ride_value":    "💵 Valor da corrida (ex: 25,50):",
		"ride_bonus":    "🎁 Bônus/gorjeta? Envie 0 se não houver.",
		"ride_mult":     "✖️ Multiplicador dinâmico? Envie 1 se não houver.",
		"ride_saved":    "✅ Corrida %s registrada: %s\n\n%s",
		"bad_amount":    "Valor inválido. Envie um número, ex: 25,50",
		"expense_fuel":  "⛽ Combustível hoje:",
		"expense_food":  "🍔 Alimentação:",
		"expense_toll":  "🛣 Pedágio:",
		"expense_other": "📦 Outros:",
		"expense_saved": "✅ Despesas do dia: %s\n\n%s",
		"online_on":     "🟢 Você está online desde %s.",
		"online_off":    "🔴 Você ficou offline. Sessão: %d min.",
		"no_city":       "Defina sua cidade em ⚙️ Perfil para ver o ranking.",
		"ranking_empty": "🏆 Nenhuma corrida em %s hoje.",
		"profile":       "⚙️ Perfil\n\nNome: %s\nCidade: %s\nInstagram: %s",
		"ask_city":      "🏙 Qual é a sua cidade?",
		"ask_instagram": "📸 Seu Instagram (ex: @motorista):",
		"saved":         "✅ Salvo.",
		"export":        "📁 Escolha o formato do relatório de hoje:",
		"platforms":     "🔗 Plataformas",
		"connect_uber":  "Abra o link para autorizar o acesso às suas corridas da Uber:",
		"synced":        "🔄 %s: %d novas corridas, %d ignoradas.",
		"disconnected":  "🔌 %s desconectada.",
		"api_token":     "🔑 Token da API (válido por 30 dias):\n<code>%s</code>",
		"cancelled":     "❌ Cancelado.",
	},
}

func msg(key string) string {
	return messages["pt"][key]
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)
	b.Bot.Handle("/cancel", b.handleCancel)
	b.Bot.Handle("/token", b.handleAPIToken)
	b.Bot.Handle(tele.OnContact, b.handleContact)

	b.Bot.Handle(btnAddRide, b.handleRideStart)
	b.Bot.Handle(btnExpenses, b.handleExpenseStart)
	b.Bot.Handle(btnOnline, b.handleToggleOnline)
	b.Bot.Handle(btnSummary, b.handleSummary)
	b.Bot.Handle(btnRanking, b.handleRanking)
	b.Bot.Handle(btnExport, b.handleExport)
	b.Bot.Handle(btnPlatforms, b.handlePlatforms)
	b.Bot.Handle(btnProfile, b.handleProfile)

	b.Bot.Handle(tele.OnCallback, b.handleCallback)
	b.Bot.Handle(tele.OnText, b.handleText)
}

func displayName(u *tele.User) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", u.FirstName, u.LastName))
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := context.Background()
	user, err := b.Svc.User().Register(ctx, c.Sender().ID, c.Sender().Username, displayName(c.Sender()))
	if err != nil {
		return b.fail(c, err)
	}
	if user.IsBlocked {
		return c.Send(msg("blocked"))
	}

	sess := b.Sessions.acquire(c.Sender().ID, user.ID)
	sess.clear()
	sess.unlock()

	if err := c.Send(fmt.Sprintf(msg("welcome"), user.Name)); err != nil {
		return err
	}
	if user.Phone == nil {
		menu := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
		menu.Reply(menu.Row(menu.Contact(msg("share_contact"))))
		if err := c.Send(msg("contact_msg"), menu); err != nil {
			return err
		}
	}
	return b.showMenu(c)
}

func (b *Bot) handleContact(c tele.Context) error {
	if c.Message().Contact.UserID != c.Sender().ID {
		return c.Send(msg("own_contact"))
	}
	user, err := b.currentUser(c)
	if err != nil {
		return b.fail(c, err)
	}
	if err := b.Svc.User().SetPhone(context.Background(), user.ID, c.Message().Contact.PhoneNumber); err != nil {
		return b.fail(c, err)
	}
	if err := c.Send(msg("phone_saved"), tele.RemoveKeyboard); err != nil {
		return err
	}
	return b.showMenu(c)
}

func (b *Bot) handleCancel(c tele.Context) error {
	sess, err := b.session(c)
	if err != nil {
		return b.fail(c, err)
	}
	sess.clear()
	sess.unlock()

	if err := c.Send(msg("cancelled")); err != nil {
		return err
	}
	return b.showMenu(c)
}

func (b *Bot) showMenu(c tele.Context) error {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(btnAddRide), menu.Text(btnExpenses)),
		menu.Row(menu.Text(btnOnline), menu.Text(btnSummary)),
		menu.Row(menu.Text(btnRanking), menu.Text(btnExport)),
		menu.Row(menu.Text(btnPlatforms), menu.Text(btnProfile)),
	)
	return c.Send(msg("menu"), menu)
}

// currentUser resolves the Telegram sender, registering them on first contact.
func (b *Bot) currentUser(c tele.Context) (*models.User, error) {
	ctx := context.Background()
	user, err := b.Svc.User().Get(ctx, c.Sender().ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = b.Svc.User().Register(ctx, c.Sender().ID, c.Sender().Username, displayName(c.Sender()))
		if err != nil {
			return nil, err
		}
	}
	if user.IsBlocked {
		return nil, apperr.Validation("%s", msg("blocked"))
	}
	return user, nil
}

// session resolves the sender and returns their locked session.
func (b *Bot) session(c tele.Context) (*UserSession, error) {
	user, err := b.currentUser(c)
	if err != nil {
		return nil, err
	}
	return b.Sessions.acquire(c.Sender().ID, user.ID), nil
}

// fail shows typed errors to the driver and hides everything else.
func (b *Bot) fail(c tele.Context, err error) error {
	if apperr.KindOf(err) == "" {
		b.Log.Error("bot request failed", logger.Int64("telegram_id", c.Sender().ID), logger.Error(err))
		return c.Send(msg("error"))
	}
	return c.Send("⚠️ " + apperr.Message(err))
}

func (b *Bot) handleText(c tele.Context) error {
	sess, err := b.session(c)
	if err != nil {
		return b.fail(c, err)
	}
	defer sess.unlock()

	switch sess.State {
	case StateRideValue, StateRideBonus, StateRideMultiplier:
		return b.handleRideText(c, sess)
	case StateExpenseFuel, StateExpenseFood, StateExpenseToll, StateExpenseOther:
		return b.handleExpenseText(c, sess)
	case StateCity, StateInstagram:
		return b.handleProfileText(c, sess)
	}
	return b.showMenu(c)
}

func (b *Bot) handleCallback(c tele.Context) error {
	data := strings.TrimSpace(c.Callback().Data)
	sess, err := b.session(c)
	if err != nil {
		_ = c.Respond()
		return b.fail(c, err)
	}
	defer sess.unlock()

	switch {
	case strings.HasPrefix(data, "rp_"):
		return b.handleRidePlatform(c, sess, strings.TrimPrefix(data, "rp_"))
	case strings.HasPrefix(data, "exp_"):
		return b.handleExportFormat(c, sess, strings.TrimPrefix(data, "exp_"))
	case strings.HasPrefix(data, "plat_"):
		return b.handlePlatformAction(c, sess, strings.TrimPrefix(data, "plat_"))
	case data == "prof_city":
		sess.State = StateCity
		_ = c.Respond()
		return c.Send(msg("ask_city"))
	case data == "prof_insta":
		sess.State = StateInstagram
		_ = c.Respond()
		return c.Send(msg("ask_instagram"))
	}
	return c.Respond()
}
