package bot

import (
	"github.com/bwmarrin/discordgo"
)

// kindChoices are the game kinds offered on game commands
var kindChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Duel", Value: "DUEL"},
	{Name: "Dice Table", Value: "DICE_TABLE"},
	{Name: "Dice Duel", Value: "DICE_DUEL"},
	{Name: "Flower", Value: "FLOWER"},
	{Name: "Hot/Cold", Value: "HOT_COLD"},
}

var currencyChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Coins", Value: "COIN"},
	{Name: "Gems", Value: "GEM"},
}

// Commands defines all slash commands for the bot
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "balance",
		Description: "Show your balances",
	},
	{
		Name:        "pay",
		Description: "Send currency to another player",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "to", Description: "Recipient", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "amount", Description: "Amount, e.g. 250k or 1.5m", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "currency", Description: "Currency", Required: false, Choices: currencyChoices},
		},
	},
	{
		Name:        "swap",
		Description: "Exchange between coins and gems at the fixed rate",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "amount", Description: "Amount to convert", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "from", Description: "Currency to convert from", Required: true, Choices: currencyChoices},
		},
	},
	{
		Name:        "open",
		Description: "Open a new game as host",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "kind", Description: "Game kind", Required: true, Choices: kindChoices},
		},
	},
	{
		Name:        "bet",
		Description: "Place a bet on a host's open game",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "host", Description: "Game host", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "kind", Description: "Game kind", Required: true, Choices: kindChoices},
			{Type: discordgo.ApplicationCommandOptionString, Name: "amount", Description: "Stake, e.g. 100k", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "selection", Description: "Side, color, or number depending on the game", Required: false},
			{Type: discordgo.ApplicationCommandOptionString, Name: "currency", Description: "Currency", Required: false, Choices: currencyChoices},
		},
	},
	{
		Name:        "close",
		Description: "Close betting on your game",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "kind", Description: "Game kind", Required: true, Choices: kindChoices},
		},
	},
	{
		Name:        "cancel",
		Description: "Cancel your game and refund all bets",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "kind", Description: "Game kind", Required: true, Choices: kindChoices},
		},
	},
	{
		Name:        "settle",
		Description: "Settle your closed game with its result",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "kind", Description: "Game kind", Required: true, Choices: kindChoices},
			{Type: discordgo.ApplicationCommandOptionString, Name: "result", Description: "Result: winner side, roll, color, or hands JSON", Required: true},
		},
	},
	{
		Name:        "history",
		Description: "Show your recent ledger activity",
	},
}
