package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sellers-pro/sellers_pro/internal/account"
	"github.com/sellers-pro/sellers_pro/internal/notification"
	"github.com/sellers-pro/sellers_pro/internal/otp"
	"github.com/sellers-pro/sellers_pro/internal/session"
)

// Deps are the collaborators of the orchestrator. They are built once at startup.
type Deps struct {
	Ledger    *otp.Ledger
	Accounts  account.Repository
	Resolver  *account.Resolver
	Evaluator *account.Evaluator
	Sessions  *session.Issuer
	Notifier  notification.Notifier
	CodeTTL   time.Duration
	Logger    *slog.Logger
}

// Service composes code issuance, identity resolution and session issuance into the
// request-code, redeem-code and verify-session protocols.
type Service struct {
	ledger    *otp.Ledger
	accounts  account.Repository
	resolver  *account.Resolver
	evaluator *account.Evaluator
	sessions  *session.Issuer
	notifier  notification.Notifier
	codeTTL   time.Duration
	logger    *slog.Logger
}

// NewService wires the orchestrator.
func NewService(d Deps) *Service {
	if d.CodeTTL <= 0 {
		d.CodeTTL = otp.DefaultTTL
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{
		ledger:    d.Ledger,
		accounts:  d.Accounts,
		resolver:  d.Resolver,
		evaluator: d.Evaluator,
		sessions:  d.Sessions,
		notifier:  d.Notifier,
		codeTTL:   d.CodeTTL,
		logger:    d.Logger,
	}
}

// CodeRequest asks for a login code. PhoneNumber and Profile are only present on first
// contact, when the learner shares their phone number.
type CodeRequest struct {
	ChannelID   string
	PhoneNumber string
	Profile     account.Profile
}

// RequestCode resolves the account on first contact, issues a code and delivers it over
// the messaging channel. A repeat request needs an account already bound to ChannelID.
func (s *Service) RequestCode(ctx context.Context, req CodeRequest) (otp.Code, error) {
	if req.ChannelID == "" {
		return otp.Code{}, ErrInvalidRequest
	}

	firstContact := req.PhoneNumber != ""
	phone := ""
	if firstContact {
		resolved, err := s.resolver.ResolveOnFirstContact(ctx, req.ChannelID, req.PhoneNumber, req.Profile)
		if err != nil {
			if errors.Is(err, account.ErrInvalidInput) {
				return otp.Code{}, ErrInvalidRequest
			}
			return otp.Code{}, storeErr("resolve identity", err)
		}
		phone = account.NormalizePhone(req.PhoneNumber)
		s.logger.Info("identity resolved", slog.String("account_id", resolved.ID), slog.Bool("confirmed", resolved.Channel.Confirmed()))
	} else {
		if _, err := s.accounts.FindByChannelOrPhone(ctx, req.ChannelID, ""); err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return otp.Code{}, ErrAccountNotFound
			}
			return otp.Code{}, storeErr("find account", err)
		}
	}

	code, err := s.ledger.Issue(ctx, req.ChannelID, phone, s.codeTTL)
	if err != nil {
		return otp.Code{}, storeErr("issue code", err)
	}

	if s.notifier != nil {
		err := s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindLoginCode,
			Destination: req.ChannelID,
			Body:        loginCodeMessage(code.Value, s.codeTTL, !firstContact),
		})
		if err != nil {
			return code, fmt.Errorf("deliver code: %w", err)
		}
	}
	return code, nil
}

// Login is the result of a successful redemption.
type Login struct {
	Credential session.Credential
	Account    account.Account
	HasAccess  bool
}

// Redeem consumes a code and issues a session. The code alone identifies the learner.
// Login succeeds without an active subscription; HasAccess tells the client to upsell.
func (s *Service) Redeem(ctx context.Context, value string) (Login, error) {
	code, err := s.ledger.Redeem(ctx, value)
	if err != nil {
		if errors.Is(err, otp.ErrNotFound) {
			s.logger.Info("code redemption rejected", slog.String("reason", "no redeemable code"))
			return Login{}, ErrInvalidCode
		}
		return Login{}, storeErr("redeem code", err)
	}

	owner, err := s.accounts.FindByChannelOrPhone(ctx, code.ChannelID, code.PhoneNumber)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			s.logger.Warn("redeemed code has no account", slog.String("channel_id", code.ChannelID))
			return Login{}, ErrAccountNotFound
		}
		return Login{}, storeErr("find account", err)
	}

	owner, err = s.resolver.ClaimPlaceholder(ctx, owner, code.ChannelID)
	if err != nil {
		return Login{}, storeErr("claim placeholder", err)
	}

	cred, err := s.sessions.Issue(owner.ID, owner.Channel.ID())
	if err != nil {
		return Login{}, err
	}
	return Login{Credential: cred, Account: owner, HasAccess: s.evaluator.HasAccess(owner)}, nil
}

// SessionView is what a verified credential resolves to.
type SessionView struct {
	Claims    session.Claims
	Account   account.Account
	HasAccess bool
}

// VerifySession checks a credential, lazily expires a lapsed subscription and reports access.
func (s *Service) VerifySession(ctx context.Context, token string) (SessionView, error) {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		s.logger.Info("session rejected", slog.String("reason", err.Error()))
		return SessionView{}, ErrInvalidCredential
	}

	owner, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return SessionView{}, ErrAccountNotFound
		}
		return SessionView{}, storeErr("find account", err)
	}

	hasAccess := s.evaluator.HasAccess(owner)
	owner, err = s.evaluator.Reconcile(ctx, owner)
	if err != nil {
		return SessionView{}, storeErr("reconcile subscription", err)
	}
	return SessionView{Claims: claims, Account: owner, HasAccess: hasAccess}, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
