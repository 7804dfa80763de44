package handlers

import "net/http"

type usageResponse struct {
	Plan      string `json:"plan"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Allowed   bool   `json:"allowed"`
}

// UsageStatus reports the authenticated merchant's quota position for the
// current billing period.
func (a *App) UsageStatus(w http.ResponseWriter, r *http.Request) {
	merchant, err := a.authenticate(r)
	if err != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing or unknown API key")
		return
	}

	status, err := a.Usage.CheckQuota(r.Context(), merchant.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load usage")
		return
	}

	a.json(w, http.StatusOK, usageResponse{
		Plan:      string(merchant.Plan),
		Used:      status.Used,
		Limit:     status.Limit,
		Remaining: status.Remaining,
		Allowed:   status.Allowed,
	})
}
