package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix = "post:%s"
	CategoriesKey = "categories"
)

const (
	PostTTL       = 30 * time.Minute
	CategoriesTTL = 10 * time.Minute
)

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// Invalidate deletes key. Errors are ignored; a stale entry expires with its TTL.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesKey)
}
