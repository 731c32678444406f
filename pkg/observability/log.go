package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/teamwork/pkg/domain"
)

// LogHooks returns hooks writing one structured record per event.
// Rejections and failures log at warn, everything else at debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRegister: func(ctx context.Context, e *domain.RegisterEvent) {
			level := slog.LevelDebug
			if !e.Accepted {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "register",
				"ref", e.Ref.String(),
				"lifecycle", e.Lifecycle,
				"accepted", e.Accepted,
				"violations", len(e.Violations),
			)
		},
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "resolve", "ref", e.Ref.String(), "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "resolve", "ref", e.Ref.String(), "constructed", e.Constructed)
		},
		OnExecuteStart: func(ctx context.Context, e *domain.ExecuteEvent) {
			logger.DebugContext(ctx, "execute_start", "delegator", e.Delegator)
		},
		OnExecuteEnd: func(ctx context.Context, e *domain.ExecuteEvent) {
			attrs := []any{
				"delegator", e.Delegator,
				"outcome", e.Outcome,
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "execute_end", append(attrs, "err", e.Err)...)
				return
			}
			logger.DebugContext(ctx, "execute_end", attrs...)
		},
	}
}
