package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/currency"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/fadedpez/sentenza/pkg/games/diceduel"
	"github.com/fadedpez/sentenza/pkg/games/dicetable"
	"github.com/fadedpez/sentenza/pkg/games/duel"
	"github.com/fadedpez/sentenza/pkg/games/flower"
	"github.com/fadedpez/sentenza/pkg/games/hotcold"
)

// friendly translations for the core's error codes
var errorMessages = map[types.ErrorCode]string{
	types.ErrInvalidFormat:       "That amount doesn't look right. Try something like 100, 250k, or 1.5m.",
	types.ErrInsufficientFunds:   "You don't have enough for that.",
	types.ErrAccountLocked:       "That account is locked right now.",
	types.ErrDuplicateActiveGame: "You already have a game of that kind running. Close or cancel it first.",
	types.ErrGameNotFound:        "No such game is running.",
	types.ErrBettingClosed:       "Betting is closed on that game.",
	types.ErrInvalidTransition:   "That game isn't in the right state for that.",
	types.ErrSelfBetForbidden:    "You can't bet on your own game.",
	types.ErrInvalidSelection:    "That selection isn't valid for this game.",
	types.ErrInvalidOutcome:      "That result doesn't fit this game. Check it and settle again.",
	types.ErrPersistenceFailure:  "Storage hiccup. Nothing was lost; try again.",
}

func (b *Bot) handleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	data := i.ApplicationCommandData()

	var (
		reply string
		err   error
	)

	switch data.Name {
	case "balance":
		reply, err = b.handleBalance(ctx, i)
	case "pay":
		reply, err = b.handlePay(ctx, i)
	case "swap":
		reply, err = b.handleSwap(ctx, i)
	case "open":
		reply, err = b.handleOpen(ctx, i)
	case "bet":
		reply, err = b.handleBet(ctx, i)
	case "close":
		reply, err = b.handleClose(ctx, i)
	case "cancel":
		reply, err = b.handleCancel(ctx, i)
	case "settle":
		reply, err = b.handleSettle(ctx, i)
	case "history":
		reply, err = b.handleHistory(ctx, i)
	default:
		return
	}

	if err != nil {
		b.logger.LogError(err)
		reply = translateError(err)
	}

	b.respond(s, i, reply)
}

func (b *Bot) handleBalance(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	acct, err := b.ledger.GetAccount(ctx, userID(i))
	if err != nil {
		return "", err
	}

	if acct.Private {
		return "Your balances are set to private.", nil
	}
	return fmt.Sprintf("You have %s coins and %s gems.",
		currency.Format(acct.Balance(entities.CurrencyCoin)),
		currency.Format(acct.Balance(entities.CurrencyGem))), nil
}

func (b *Bot) handlePay(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	opts := optionMap(i)

	amount, err := currency.Parse(opts["amount"].StringValue())
	if err != nil {
		return "", err
	}

	to := opts["to"].UserValue(nil).ID
	code := currencyOption(opts)

	if err := b.ledger.Transfer(ctx, userID(i), to, code, amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("Sent %s %s to <@%s>.", currency.Format(amount), strings.ToLower(string(code)), to), nil
}

func (b *Bot) handleSwap(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	opts := optionMap(i)

	amount, err := currency.Parse(opts["amount"].StringValue())
	if err != nil {
		return "", err
	}

	from := entities.CurrencyCode(opts["from"].StringValue())
	to := entities.CurrencyGem
	if from == entities.CurrencyGem {
		to = entities.CurrencyCoin
	}

	if err := b.ledger.Swap(ctx, userID(i), from, to, amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("Swapped %s %s into %s.",
		currency.Format(amount), strings.ToLower(string(from)), strings.ToLower(string(to))), nil
}

func (b *Bot) handleOpen(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	opts := optionMap(i)
	kind := entities.GameKind(opts["kind"].StringValue())

	g, err := b.engine.CreateGame(ctx, userID(i), kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Your %s game is open for bets (game %s).", kindLabel(g.Kind), shortID(g.ID)), nil
}

func (b *Bot) handleBet(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	opts := optionMap(i)

	amount, err := currency.Parse(opts["amount"].StringValue())
	if err != nil {
		return "", err
	}

	hostID := opts["host"].UserValue(nil).ID
	kind := entities.GameKind(opts["kind"].StringValue())

	selection := ""
	if opt, exists := opts["selection"]; exists {
		selection = strings.ToLower(strings.TrimSpace(opt.StringValue()))
	}

	g, err := b.engine.GetActiveGame(ctx, hostID, kind)
	if err != nil {
		return "", err
	}

	bet, err := b.engine.PlaceBet(ctx, g.ID, userID(i), currencyOption(opts), amount, selection)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Bet placed: %s on %s's %s game.",
		currency.Format(bet.Amount), mention(hostID), kindLabel(kind)), nil
}

func (b *Bot) handleClose(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	g, err := b.hostActiveGame(ctx, i)
	if err != nil {
		return "", err
	}

	if _, err := b.engine.CloseBetting(ctx, g.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Betting closed on your %s game with %d bet(s).", kindLabel(g.Kind), len(g.Bets)), nil
}

func (b *Bot) handleCancel(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	g, err := b.hostActiveGame(ctx, i)
	if err != nil {
		return "", err
	}

	failures, err := b.engine.CancelGame(ctx, g.ID)
	if err != nil {
		return "", err
	}

	if len(failures) > 0 {
		return fmt.Sprintf("Game cancelled, but %d refund(s) could not be applied; those bettors should contact a moderator.", len(failures)), nil
	}
	return fmt.Sprintf("Your %s game was cancelled and all %d bet(s) refunded.", kindLabel(g.Kind), len(g.Bets)), nil
}

func (b *Bot) handleSettle(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	opts := optionMap(i)

	g, err := b.hostActiveGame(ctx, i)
	if err != nil {
		return "", err
	}

	outcome, err := parseOutcome(g.Kind, opts["result"].StringValue())
	if err != nil {
		return "", err
	}

	failures, err := b.engine.Settle(ctx, g.ID, outcome)
	if err != nil {
		return "", err
	}

	if len(failures) > 0 {
		return fmt.Sprintf("Game settled, but %d payout(s) could not be applied; those bettors should contact a moderator.", len(failures)), nil
	}
	return fmt.Sprintf("Your %s game is settled. Payouts are in.", kindLabel(g.Kind)), nil
}

func (b *Bot) handleHistory(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	entries, err := b.ledger.History(ctx, userID(i), 10)
	if err != nil {
		return "", err
	}

	if len(entries) == 0 {
		return "No ledger activity yet.", nil
	}

	var sb strings.Builder
	sb.WriteString("Recent activity:\n")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("%s %s %s — %s\n",
			entry.Timestamp.Format("Jan 2 15:04"),
			currency.Format(entry.Delta.Abs()),
			strings.ToLower(string(entry.Currency)),
			entry.Description))
	}
	return sb.String(), nil
}

// hostActiveGame resolves the invoking user's own active game of the
// kind named in the command options.
func (b *Bot) hostActiveGame(ctx context.Context, i *discordgo.InteractionCreate) (*entities.Game, error) {
	opts := optionMap(i)
	kind := entities.GameKind(opts["kind"].StringValue())
	return b.engine.GetActiveGame(ctx, userID(i), kind)
}

// parseOutcome builds the kind-specific outcome from the host-entered
// result string.
func parseOutcome(kind entities.GameKind, result string) (entities.Outcome, error) {
	result = strings.TrimSpace(result)

	switch kind {
	case entities.KindDuel:
		return duel.Outcome{Winner: strings.ToLower(result)}, nil

	case entities.KindDiceTable:
		roll, err := strconv.Atoi(result)
		if err != nil {
			return nil, types.WrapError(types.ErrInvalidOutcome, "the dice table result is the roll, 1-100", err)
		}
		return dicetable.Outcome{Roll: roll}, nil

	case entities.KindDiceDuel:
		parts := strings.Split(result, ",")
		if len(parts) != 2 {
			return nil, types.NewCoreError(types.ErrInvalidOutcome, "enter the two rolls as host,challenger")
		}
		hostRoll, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		challengerRoll, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return nil, types.NewCoreError(types.ErrInvalidOutcome, "enter the two rolls as host,challenger")
		}
		return diceduel.Outcome{HostRoll: hostRoll, ChallengerRoll: challengerRoll}, nil

	case entities.KindHotCold:
		return hotcold.Outcome{Color: strings.ToLower(result)}, nil

	case entities.KindFlower:
		var outcome flower.Outcome
		if err := json.Unmarshal([]byte(result), &outcome); err != nil {
			return nil, types.WrapError(types.ErrInvalidOutcome, "the flower result is a JSON document of hands", err)
		}
		return outcome, nil
	}

	return nil, types.NewCoreError(types.ErrInvalidOutcome, fmt.Sprintf("unknown game kind %s", kind))
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		b.logger.Error("Failed to respond to interaction: %v", err)
	}
}

func translateError(err error) string {
	var coreErr *types.CoreError
	if types.As(err, &coreErr) {
		if msg, exists := errorMessages[coreErr.Code]; exists {
			return msg
		}
	}
	return "Something went wrong. Try again."
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func currencyOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) entities.CurrencyCode {
	if opt, exists := opts["currency"]; exists {
		return entities.CurrencyCode(opt.StringValue())
	}
	return entities.CurrencyCoin
}

func userID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func mention(id string) string {
	return "<@" + id + ">"
}

func kindLabel(kind entities.GameKind) string {
	switch kind {
	case entities.KindDuel:
		return "duel"
	case entities.KindDiceTable:
		return "dice table"
	case entities.KindDiceDuel:
		return "dice duel"
	case entities.KindFlower:
		return "flower"
	case entities.KindHotCold:
		return "hot/cold"
	}
	return strings.ToLower(string(kind))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
