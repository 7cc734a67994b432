package cache

import (
	"context"
	"fmt"
	"time"
)

const UserKeyPrefix = "user:%d"

const UserTTL = 5 * time.Minute

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateUsers drops the cached profiles of users whose fields or
// follow sets changed.
func InvalidateUsers(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UserKey(id))
	}
	Invalidate(ctx, keys...)
}
