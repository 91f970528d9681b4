package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/domain"
)

func TestTemplateRenderer_Render(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	tests := []struct {
		name        string
		template    string
		data        any
		wantSubject string
		wantHTML    []string
		wantText    []string
	}{
		{
			name:        "welcome",
			template:    "welcome",
			data:        &domain.WelcomeMessageEmailData{Email: "alice@example.com", FullName: "Alice"},
			wantSubject: "Welcome to tripsplit, Alice",
			wantHTML:    []string{"Hi Alice", "alice@example.com"},
			wantText:    []string{"Hi Alice"},
		},
		{
			name:     "trip invitation escapes html",
			template: "trip_invitation",
			data: &domain.TripInvitationEmailData{
				Email:       "bob@example.com",
				InviterName: "Alice",
				TripTitle:   "Lisbon <3",
				Destination: "Portugal",
				Role:        domain.RoleGuest,
				ExpiresAt:   time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
				AcceptURL:   "https://app.example.com/invitations/inv-1",
			},
			wantSubject: "Alice invited you to Lisbon <3",
			wantHTML:    []string{"Lisbon &lt;3", "https://app.example.com/invitations/inv-1", "Mar 2, 2025 12:00 UTC"},
			wantText:    []string{`"Lisbon <3" (Portugal) as guest`},
		},
		{
			name:     "settlement reminder lists every line",
			template: "settlement_reminder",
			data: &domain.SettlementReminderEmailData{
				Email:    "bob@example.com",
				FullName: "Bob",
				Lines: []domain.ReminderLine{
					{TripTitle: "Lisbon", ExpenseTitle: "Dinner", Amount: "30", Currency: "EUR", PayerName: "Alice"},
					{TripTitle: "Lisbon", ExpenseTitle: "Taxi", Amount: "10", Currency: "EUR", PayerName: "Carol"},
				},
			},
			wantSubject: "You have 2 unsettled expenses",
			wantHTML:    []string{"Dinner, 30 EUR to Alice", "Taxi, 10 EUR to Carol"},
			wantText:    []string{"- Lisbon: Dinner, 30 EUR to Alice", "- Lisbon: Taxi, 10 EUR to Carol"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, html, text, err := r.Render(tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
			for _, s := range tt.wantHTML {
				assert.Contains(t, html, s)
			}
			for _, s := range tt.wantText {
				assert.Contains(t, text, s)
			}
		})
	}
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, _, _, err = r.Render("missing", nil)
	require.Error(t, err)
}
