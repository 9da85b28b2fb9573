package intake

import "context"

// SessionStore persists conversation state between messages. Get returns
// (nil, nil) when no session exists for the key; implementations expire
// entries after their configured TTL.
type SessionStore interface {
	Get(ctx context.Context, tenantID, phone string) (*State, error)
	Put(ctx context.Context, tenantID, phone string, st *State) error
	Delete(ctx context.Context, tenantID, phone string) error
}

func sessionKey(tenantID, phone string) string {
	return "agenda:intake:" + tenantID + ":" + phone
}
