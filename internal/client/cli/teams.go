package cli

import (
	"context"
	"time"
)

// Me fetches and prints the signed-in user.
func (a *App) Me(ctx context.Context) error {
	u, err := a.authService.CurrentUser(ctx)
	if err != nil {
		return err
	}
	a.setUser(u)

	verified := "no"
	if u.EmailVerified {
		verified = "yes"
	}
	a.printf("ID:       %s\nEmail:    %s\nUsername: %s\nVerified: %s\n", u.ID, u.Email, u.Username, verified)
	if u.Role != "" {
		a.printf("Role:     %s\n", u.Role)
	}
	return nil
}

// Teams lists the user's teams.
func (a *App) Teams(ctx context.Context) error {
	teams, err := a.authService.Teams(ctx)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		a.printf("No teams yet.\n")
		return nil
	}
	for _, t := range teams {
		a.printf("- %s [%s] %s, %d members\n", t.Name, t.ID, t.Game, t.Members)
	}
	return nil
}

// Status prints the local view of the session.
func (a *App) Status(ctx context.Context) error {
	st, err := a.authService.Status(ctx)
	if err != nil {
		return err
	}

	if !st.Authenticated {
		a.printf("Not signed in.\n")
		return nil
	}

	a.printf("Signed in. Session %s", st.Session.Phase)
	if st.Remaining > 0 {
		a.printf(", %s left", st.Remaining.Round(time.Second))
	}
	a.printf(".\n")

	if st.Claims != nil {
		a.printf("Access token for %s valid until %s.\n", st.Claims.Subject, st.Claims.ExpiresAt.Local().Format(time.DateTime))
	} else {
		a.printf("No access token yet; one is fetched on the next request.\n")
	}
	return nil
}
