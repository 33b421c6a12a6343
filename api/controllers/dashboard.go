package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/connectedautocare/console-gateway/api/middleware"
	"github.com/connectedautocare/console-gateway/api/responses"
	"github.com/connectedautocare/console-gateway/internal/session"
	"github.com/connectedautocare/console-gateway/pkg/enums"
	"github.com/connectedautocare/console-gateway/pkg/logger"
	"github.com/connectedautocare/console-gateway/pkg/platform"
)

type dashboardPolicy struct {
	Status  enums.PolicyStatus `json:"status"`
	Premium decimal.Decimal    `json:"premium"`
}

type policiesEnvelope struct {
	Policies []dashboardPolicy `json:"policies"`
}

type dashboardStats struct {
	TotalPolicies    int            `json:"total_policies"`
	ActivePolicies   int            `json:"active_policies"`
	TotalPremium     string         `json:"total_premium"`
	PoliciesByStatus map[string]int `json:"policies_by_status"`
}

// DashboardStats aggregates the upstream policy list into the numbers the
// dashboard cards show. Premiums are summed as decimals so cent totals
// survive the round trip.
func DashboardStats(client upstreamCaller, mgr *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)

		var envelope policiesEnvelope
		err := client.Call(ctx, platform.CallOptions{
			Method:    http.MethodGet,
			Path:      "/api/policies",
			Endpoint:  "dashboard_stats",
			Token:     mgr.Token(ctx, sessionID),
			SessionID: sessionID,
			Out:       &envelope,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		stats := dashboardStats{
			TotalPolicies:    len(envelope.Policies),
			PoliciesByStatus: map[string]int{},
		}
		total := decimal.Zero
		for _, policy := range envelope.Policies {
			total = total.Add(policy.Premium)
			bucket := "unknown"
			if policy.Status.IsValid() {
				bucket = string(policy.Status)
			}
			stats.PoliciesByStatus[bucket]++
			if policy.Status == enums.PolicyStatusActive {
				stats.ActivePolicies++
			}
		}
		stats.TotalPremium = total.StringFixed(2)

		responses.WriteSuccess(w, stats)
	}
}
