package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sellers-pro/sellers_pro/internal/account"
	"github.com/sellers-pro/sellers_pro/internal/auth"
	"github.com/sellers-pro/sellers_pro/internal/otp"
)

// Actions reported in an Outcome.
const (
	ActionStart          = "start"
	ActionContact        = "contact"
	ActionForeignContact = "foreign_contact"
	ActionCode           = "code"
	ActionHelp           = "help"
	ActionUnknown        = "unknown"
	ActionIgnored        = "ignored"
	ActionDuplicate      = "duplicate"
)

// Sender posts chat messages.
type Sender interface {
	SendMessage(ctx context.Context, req SendMessageRequest) error
}

// CodeRequester issues and delivers login codes.
type CodeRequester interface {
	RequestCode(ctx context.Context, req auth.CodeRequest) (otp.Code, error)
}

// Outcome describes how one update was handled. Err is set when handling failed.
type Outcome struct {
	UpdateID int64
	ChatID   string
	Action   string
	Err      error
}

// Bot turns webhook updates into login-code requests.
type Bot struct {
	sender Sender
	codes  CodeRequester
	dedupe Deduper
	logger *slog.Logger
}

// NewBot builds a bot. dedupe may be nil.
func NewBot(sender Sender, codes CodeRequester, dedupe Deduper, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{sender: sender, codes: codes, dedupe: dedupe, logger: logger}
}

// Dispatch handles update and logs the outcome. A failing update never propagates.
func (b *Bot) Dispatch(ctx context.Context, update Update) Outcome {
	if b.dedupe != nil {
		first, err := b.dedupe.Claim(ctx, update.UpdateID)
		if err != nil {
			b.logger.Warn("update de-duplication unavailable", slog.Int64("update_id", update.UpdateID), slog.Any("error", err))
		} else if !first {
			out := Outcome{UpdateID: update.UpdateID, Action: ActionDuplicate}
			b.logger.Info("duplicate update skipped", slog.Int64("update_id", update.UpdateID))
			return out
		}
	}

	out := b.HandleUpdate(ctx, update)
	attrs := []any{
		slog.Int64("update_id", out.UpdateID),
		slog.String("action", out.Action),
	}
	if out.ChatID != "" {
		attrs = append(attrs, slog.String("chat_id", out.ChatID))
	}
	if out.Err != nil {
		attrs = append(attrs, slog.Any("error", out.Err))
		b.logger.Error("update failed", attrs...)
		return out
	}
	b.logger.Info("update handled", attrs...)
	return out
}

// HandleUpdate routes one update to its command handler.
func (b *Bot) HandleUpdate(ctx context.Context, update Update) Outcome {
	out := Outcome{UpdateID: update.UpdateID, Action: ActionIgnored}
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return out
	}
	out.ChatID = FormatID(msg.Chat.ID)

	if msg.Contact != nil {
		return b.handleContact(ctx, out, msg)
	}

	switch command(msg.Text) {
	case "":
		// Plain chat text is not addressed to the bot.
		return out
	case "/start":
		out.Action = ActionStart
		out.Err = b.sender.SendMessage(ctx, SendMessageRequest{
			ChatID:    out.ChatID,
			Text:      welcomeText(msg.From.FirstName),
			ParseMode: "Markdown",
			ReplyMarkup: ReplyKeyboardMarkup{
				Keyboard:        [][]KeyboardButton{{{Text: shareContactButton, RequestContact: true}}},
				ResizeKeyboard:  true,
				OneTimeKeyboard: true,
			},
		})
	case "/otp":
		out.Action = ActionCode
		_, err := b.codes.RequestCode(ctx, auth.CodeRequest{ChannelID: FormatID(msg.From.ID)})
		out.Err = b.replyToCodeError(ctx, out.ChatID, err)
	case "/help":
		out.Action = ActionHelp
		out.Err = b.reply(ctx, out.ChatID, helpText)
	default:
		out.Action = ActionUnknown
		out.Err = b.reply(ctx, out.ChatID, unknownText)
	}
	return out
}

// handleContact issues a code for a shared phone number, but only the sender's own.
func (b *Bot) handleContact(ctx context.Context, out Outcome, msg *Message) Outcome {
	if msg.Contact.UserID != msg.From.ID {
		out.Action = ActionForeignContact
		out.Err = b.reply(ctx, out.ChatID, foreignContactText)
		return out
	}

	out.Action = ActionContact
	_, err := b.codes.RequestCode(ctx, auth.CodeRequest{
		ChannelID:   FormatID(msg.From.ID),
		PhoneNumber: msg.Contact.PhoneNumber,
		Profile: account.Profile{
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.Username,
		},
	})
	out.Err = b.replyToCodeError(ctx, out.ChatID, err)
	return out
}

// replyToCodeError tells the learner a code request failed. The code itself was already
// delivered on success.
func (b *Bot) replyToCodeError(ctx context.Context, chatID string, err error) error {
	if err == nil {
		return nil
	}
	text := genericErrorText
	if errors.Is(err, auth.ErrAccountNotFound) {
		text = notRegisteredText
	}
	if replyErr := b.reply(ctx, chatID, text); replyErr != nil {
		return errors.Join(err, replyErr)
	}
	return err
}

func (b *Bot) reply(ctx context.Context, chatID, text string) error {
	return b.sender.SendMessage(ctx, SendMessageRequest{ChatID: chatID, Text: text, ParseMode: "Markdown"})
}

// command returns the leading /command of text without a @botname suffix, or "" when
// text is not a command.
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}
