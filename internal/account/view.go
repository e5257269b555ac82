package account

import "time"

// SubscriptionView is the JSON shape of a subscription.
type SubscriptionView struct {
	Type      Tier       `json:"type"`
	Active    bool       `json:"active"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// ProgressView is the JSON shape of one lesson's progress.
type ProgressView struct {
	LessonID    int       `json:"lessonId"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completedAt"`
}

// View is the JSON shape of an account returned to web clients and the admin panel.
type View struct {
	ID           string           `json:"id"`
	TelegramID   string           `json:"telegramId"`
	Confirmed    bool             `json:"confirmed"`
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName,omitempty"`
	Username     string           `json:"username,omitempty"`
	PhoneNumber  string           `json:"phoneNumber"`
	Subscription SubscriptionView `json:"subscription"`
	Progress     []ProgressView   `json:"progress"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// NewView converts an account for the wire.
func NewView(a Account) View {
	return View{
		ID:          a.ID,
		TelegramID:  a.Channel.ID(),
		Confirmed:   a.Channel.Confirmed(),
		FirstName:   a.Profile.FirstName,
		LastName:    a.Profile.LastName,
		Username:    a.Profile.Username,
		PhoneNumber: a.PhoneNumber,
		Subscription: SubscriptionView{
			Type:      a.Subscription.Tier,
			Active:    a.Subscription.Active,
			StartDate: a.Subscription.StartDate,
			EndDate:   a.Subscription.EndDate,
		},
		Progress:  NewProgressViews(a.Progress),
		CreatedAt: a.CreatedAt,
	}
}

// NewProgressViews converts lesson progress for the wire.
func NewProgressViews(progress []Progress) []ProgressView {
	out := make([]ProgressView, 0, len(progress))
	for _, p := range progress {
		out = append(out, ProgressView{LessonID: p.LessonID, Completed: p.Completed, CompletedAt: p.CompletedAt})
	}
	return out
}
