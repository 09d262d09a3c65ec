package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/event"
)

// Session is the part of discordgo.Session the notifier uses
type Session interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

type Config struct {
	BotKey    string `mapstructure:"botKey"`
	ChannelId string `mapstructure:"channelId"`
	// AssetUrl is formatted with collection and token id
	AssetUrl string `mapstructure:"assetUrl"`
	Symbol   string `mapstructure:"symbol"`
	Decimals int32  `mapstructure:"decimals"`
}

type discord struct {
	session Session
	cfg     Config
}

func NewDiscord(cfg Config) (event.Sink, error) {
	session, err := discordgo.New(fmt.Sprintf("Bot %s", cfg.BotKey))
	if err != nil {
		return nil, xerrors.Errorf("discordgo.New: %w", err)
	}
	return NewDiscordWithSession(session, cfg), nil
}

func NewDiscordWithSession(session Session, cfg Config) event.Sink {
	return &discord{session: session, cfg: cfg}
}

func (d *discord) Name() string {
	return "discord"
}

// Handle posts one embed per completed sale and skips every other kind
func (d *discord) Handle(c ctx.Ctx, events []event.Event) error {
	for _, e := range events {
		msg := d.message(e)
		if msg == nil {
			continue
		}
		if _, err := d.session.ChannelMessageSendEmbed(d.cfg.ChannelId, msg); err != nil {
			return xerrors.Errorf("send sale %d: %w", e.Seq, err)
		}
	}
	return nil
}

func (d *discord) message(e event.Event) *discordgo.MessageEmbed {
	var title string
	var seller, buyer domain.Address
	switch e.Kind {
	case event.KindItemSold:
		title, seller, buyer = "Item sold!", e.Account, e.Counterparty
	case event.KindOfferAccepted:
		title, seller, buyer = "Offer accepted!", e.Counterparty, e.Account
	case event.KindBidAccepted:
		title, seller, buyer = "Auction settled!", e.Counterparty, e.Account
	default:
		return nil
	}

	msg := &discordgo.MessageEmbed{
		Title: title,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Seller", Value: string(seller)},
			{Name: "Buyer", Value: string(buyer)},
			{Name: "Price", Value: d.price(e.Value)},
		},
	}
	if d.cfg.AssetUrl != "" {
		msg.Description = fmt.Sprintf(d.cfg.AssetUrl, e.Collection, e.TokenId)
	} else {
		msg.Description = fmt.Sprintf("%s #%s", e.Collection, e.TokenId)
	}
	return msg
}

func (d *discord) price(value string) string {
	amount, err := domain.ParseAmount(value)
	if err != nil {
		return value
	}
	s := domain.DisplayAmount(amount, d.cfg.Decimals)
	if d.cfg.Symbol != "" {
		s = fmt.Sprintf("%s %s", s, d.cfg.Symbol)
	}
	return s
}
