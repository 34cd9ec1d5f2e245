package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/storage"
)

// The individual keys are the canonical copy of the session. The userSession
// blob is derived from them on every save and never read back.
var sessionKeys = []string{
	storage.KeyToken,
	storage.KeyUserID,
	storage.KeyPlanID,
	storage.KeyName,
	storage.KeyUserData,
	storage.KeyUserSession,
	storage.KeyConversations,
}

// SaveSession persists sess to st.
func SaveSession(ctx context.Context, st storage.Storage, sess models.UserSession) error {
	if !sess.Valid() {
		return fmt.Errorf("save session: token, user id and plan id are required")
	}

	writes := []struct{ key, value string }{
		{storage.KeyToken, sess.Token},
		{storage.KeyUserID, sess.UserID},
		{storage.KeyPlanID, sess.PlanID},
	}
	for _, w := range writes {
		if err := st.Set(ctx, w.key, w.value); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	if sess.Name != "" {
		if err := st.Set(ctx, storage.KeyName, sess.Name); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	} else if err := st.Remove(ctx, storage.KeyName); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	blob, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := st.Set(ctx, storage.KeyUserSession, string(blob)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession reads the session keys. It returns nil when any of token,
// user id or plan id is missing.
func LoadSession(ctx context.Context, st storage.Storage) (*models.UserSession, error) {
	var sess models.UserSession
	fields := []struct {
		key string
		dst *string
	}{
		{storage.KeyToken, &sess.Token},
		{storage.KeyUserID, &sess.UserID},
		{storage.KeyPlanID, &sess.PlanID},
		{storage.KeyName, &sess.Name},
	}
	for _, f := range fields {
		v, _, err := st.Get(ctx, f.key)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		*f.dst = v
	}

	if !sess.Valid() {
		return nil, nil
	}
	return &sess, nil
}

// ClearStoredSession removes every session-related key.
func ClearStoredSession(ctx context.Context, st storage.Storage) error {
	for _, key := range sessionKeys {
		if err := st.Remove(ctx, key); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// ReadUserData decodes the userData blob. Absent or malformed data yields nil.
func ReadUserData(ctx context.Context, st storage.Storage) *models.UserData {
	var data models.UserData
	if !readJSON(ctx, st, storage.KeyUserData, &data) {
		return nil
	}
	return &data
}

// ReadConversations decodes the conversations array. Absent or malformed
// data yields nil.
func ReadConversations(ctx context.Context, st storage.Storage) []models.Conversation {
	var list []models.Conversation
	if !readJSON(ctx, st, storage.KeyConversations, &list) {
		return nil
	}
	return list
}

func readJSON(ctx context.Context, st storage.Storage, key string, dst any) bool {
	raw, ok, err := st.Get(ctx, key)
	if err != nil || !ok || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}
