package store

import (
	"context"
	"strings"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/storage"
)

// ResolvePlanID finds the plan id of the current user: the in-memory
// session first, then the plan_id key, then the plan_id inside the userData
// blob.
func ResolvePlanID(ctx context.Context, session *models.UserSession, st storage.Storage) (string, bool) {
	if session != nil && session.PlanID != "" {
		return session.PlanID, true
	}

	if st == nil {
		return "", false
	}

	if v, ok, err := st.Get(ctx, storage.KeyPlanID); err == nil && ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}

	if data := ReadUserData(ctx, st); data != nil && data.PlanID != "" {
		return data.PlanID.String(), true
	}

	return "", false
}

// LandingFor picks the admin view when planID equals the administrator plan.
func LandingFor(planID string, ok bool, adminPlanID string) View {
	if ok && adminPlanID != "" && planID == adminPlanID {
		return ViewAdmin
	}
	return ViewStorefront
}
