package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellers-pro/sellers_pro/internal/auth"
	"github.com/sellers-pro/sellers_pro/internal/logging"
	"github.com/sellers-pro/sellers_pro/internal/otp"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []SendMessageRequest
}

func (s *fakeSender) SendMessage(_ context.Context, req SendMessageRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	return nil
}

type fakeCodes struct {
	requests []auth.CodeRequest
	err      error
}

func (f *fakeCodes) RequestCode(_ context.Context, req auth.CodeRequest) (otp.Code, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return otp.Code{}, f.err
	}
	return otp.Code{Value: "482913", ChannelID: req.ChannelID}, nil
}

type memoryDeduper struct{ seen map[int64]bool }

func (d *memoryDeduper) Claim(_ context.Context, id int64) (bool, error) {
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func textUpdate(id int64, from int64, text string) Update {
	return Update{UpdateID: id, Message: &Message{
		From: &User{ID: from, FirstName: "Aziz"},
		Chat: Chat{ID: from, Type: "private"},
		Text: text,
	}}
}

func newTestBot(codes *fakeCodes) (*Bot, *fakeSender) {
	sender := &fakeSender{}
	return NewBot(sender, codes, &memoryDeduper{seen: map[int64]bool{}}, logging.Discard()), sender
}

func TestBotStartAsksForContact(t *testing.T) {
	bot, sender := newTestBot(&fakeCodes{})

	out := bot.HandleUpdate(context.Background(), textUpdate(1, 7001, "/start"))
	require.NoError(t, out.Err)
	assert.Equal(t, ActionStart, out.Action)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "7001", sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "Aziz")
	markup, ok := sender.sent[0].ReplyMarkup.(ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, markup.Keyboard[0][0].RequestContact)
}

func TestBotStartEscapesMarkdownInName(t *testing.T) {
	bot, sender := newTestBot(&fakeCodes{})

	update := textUpdate(12, 7001, "/start")
	update.Message.From.FirstName = "Ali_*`[x"
	out := bot.HandleUpdate(context.Background(), update)
	require.NoError(t, out.Err)
	require.Len(t, sender.sent, 1)

	text := sender.sent[0].Text
	assert.Equal(t, "Markdown", sender.sent[0].ParseMode)
	assert.Contains(t, text, "Ali\\_\\*\\`\\[x")
	assert.NotContains(t, text, "Ali_")
	_, ok := sender.sent[0].ReplyMarkup.(ReplyKeyboardMarkup)
	assert.True(t, ok)
}

func TestWelcomeTextFallsBackWithoutName(t *testing.T) {
	assert.Contains(t, welcomeText("  "), "do'stim")
	assert.Equal(t, "Aziz", markdownEscaper.Replace("Aziz"))
}

func TestBotContactRequestsCode(t *testing.T) {
	codes := &fakeCodes{}
	bot, sender := newTestBot(codes)

	update := Update{UpdateID: 2, Message: &Message{
		From:    &User{ID: 7001, FirstName: "Aziz", LastName: "Karimov", Username: "aziz"},
		Chat:    Chat{ID: 7001},
		Contact: &Contact{PhoneNumber: "998901234567", UserID: 7001},
	}}
	out := bot.HandleUpdate(context.Background(), update)
	require.NoError(t, out.Err)
	assert.Equal(t, ActionContact, out.Action)
	require.Len(t, codes.requests, 1)
	assert.Equal(t, "7001", codes.requests[0].ChannelID)
	assert.Equal(t, "998901234567", codes.requests[0].PhoneNumber)
	assert.Equal(t, "Karimov", codes.requests[0].Profile.LastName)
	assert.Empty(t, sender.sent)
}

func TestBotRejectsForeignContact(t *testing.T) {
	codes := &fakeCodes{}
	bot, sender := newTestBot(codes)

	update := Update{UpdateID: 3, Message: &Message{
		From:    &User{ID: 7001},
		Chat:    Chat{ID: 7001},
		Contact: &Contact{PhoneNumber: "+998900000000", UserID: 9999},
	}}
	out := bot.HandleUpdate(context.Background(), update)
	assert.Equal(t, ActionForeignContact, out.Action)
	assert.Empty(t, codes.requests)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, foreignContactText, sender.sent[0].Text)
}

func TestBotOTPWithoutAccount(t *testing.T) {
	codes := &fakeCodes{err: auth.ErrAccountNotFound}
	bot, sender := newTestBot(codes)

	out := bot.HandleUpdate(context.Background(), textUpdate(4, 7001, "/otp@sellers_pro_bot"))
	assert.Equal(t, ActionCode, out.Action)
	assert.ErrorIs(t, out.Err, auth.ErrAccountNotFound)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, notRegisteredText, sender.sent[0].Text)
	assert.Empty(t, codes.requests[0].PhoneNumber)
}

func TestBotGenericErrorMessage(t *testing.T) {
	codes := &fakeCodes{err: errors.New("store unavailable")}
	bot, sender := newTestBot(codes)

	out := bot.HandleUpdate(context.Background(), textUpdate(5, 7001, "/otp"))
	assert.Error(t, out.Err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, genericErrorText, sender.sent[0].Text)
}

func TestBotHelpUnknownAndIgnored(t *testing.T) {
	bot, sender := newTestBot(&fakeCodes{})
	ctx := context.Background()

	assert.Equal(t, ActionHelp, bot.HandleUpdate(ctx, textUpdate(6, 7001, "/help")).Action)
	assert.Equal(t, ActionUnknown, bot.HandleUpdate(ctx, textUpdate(7, 7001, "/menu")).Action)
	assert.Equal(t, ActionIgnored, bot.HandleUpdate(ctx, Update{UpdateID: 8}).Action)
	assert.Equal(t, ActionIgnored, bot.HandleUpdate(ctx, textUpdate(9, 7001, "")).Action)
	assert.Len(t, sender.sent, 2)
}

func TestBotIgnoresPlainText(t *testing.T) {
	codes := &fakeCodes{}
	bot, sender := newTestBot(codes)

	out := bot.HandleUpdate(context.Background(), textUpdate(11, 7001, "salom, kod kerak"))
	assert.Equal(t, ActionIgnored, out.Action)
	assert.NoError(t, out.Err)
	assert.Empty(t, sender.sent)
	assert.Empty(t, codes.requests)
}

func TestBotDispatchSkipsDuplicates(t *testing.T) {
	codes := &fakeCodes{}
	bot, _ := newTestBot(codes)
	ctx := context.Background()

	first := bot.Dispatch(ctx, textUpdate(10, 7001, "/otp"))
	assert.Equal(t, ActionCode, first.Action)
	second := bot.Dispatch(ctx, textUpdate(10, 7001, "/otp"))
	assert.Equal(t, ActionDuplicate, second.Action)
	assert.Len(t, codes.requests, 1)
}

func TestCommandParsing(t *testing.T) {
	assert.Equal(t, "/start", command("/start"))
	assert.Equal(t, "/start", command("/START@bot payload"))
	assert.Equal(t, "", command("  hello "))
	assert.Equal(t, "", command("salom /start"))
	assert.Equal(t, "", command("   "))
}
