package reporting

import (
	"context"
	"maps"
	"time"
)

type metaKey struct{}

// ReportingMeta is the request scoped data attached to every Sentry event
type ReportingMeta struct {
	tags      map[string]string
	extras    map[string]string
	userID    string
	startedAt time.Time
}

// MetaFromContext returns a copy of the context's meta, safe to modify
func MetaFromContext(ctx context.Context) ReportingMeta {
	meta, _ := ctx.Value(metaKey{}).(ReportingMeta)
	meta.tags = maps.Clone(meta.tags)
	meta.extras = maps.Clone(meta.extras)
	if meta.tags == nil {
		meta.tags = make(map[string]string)
	}
	if meta.extras == nil {
		meta.extras = make(map[string]string)
	}
	return meta
}

// updateMeta derives a context whose meta is the parent's after applying update
func updateMeta(ctx context.Context, update func(meta *ReportingMeta)) context.Context {
	meta := MetaFromContext(ctx)
	update(&meta)
	return context.WithValue(ctx, metaKey{}, meta)
}

func setStartedAtInContext(ctx context.Context, startedAt time.Time) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.startedAt = startedAt
	})
}

func AddExtrasToContext(ctx context.Context, extras map[string]string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.extras, extras)
	})
}

func AddTagsToContext(ctx context.Context, tags map[string]string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.tags, tags)
	})
}

// SetUserIDInContext reports events under the given player
func SetUserIDInContext(ctx context.Context, userID string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.userID = userID
	})
}
