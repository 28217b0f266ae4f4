package cli

import (
	"context"
	"fmt"
)

// getStatus renders the prompt status: who is signed in and whether the
// session is about to expire.
func (a *App) getStatus() string {
	st, err := a.authService.Status(context.Background())
	if err != nil || !st.Authenticated {
		return ""
	}

	s := "signed in"
	if u := a.currentUser(); u != nil {
		s = u.Email
	}
	if st.Session.WarningVisible {
		s += ", expiring"
	}
	return fmt.Sprintf("(%s)", s)
}
