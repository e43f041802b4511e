package engine

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"techpanel/internal/types"
)

// expertDispatcher sequences the per-turn expert sub-process: it fans the
// selected roles out to the Expert collaborator, joins before difficulty
// adjustment, and hands the evaluations back in role-selection order.
type expertDispatcher struct {
	expert types.Expert
	log    *zap.Logger
}

func newExpertDispatcher(expert types.Expert, log *zap.Logger) *expertDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &expertDispatcher{expert: expert, log: log}
}

// drain invokes every queued role and collects the evaluations. Invocations
// are independent, so they run concurrently with a join barrier; results are
// re-sorted back to selection order afterwards. A failed expert call is
// logged and omitted — it never blocks the other experts or aborts the turn.
// A role queued twice contributes at most one evaluation.
func (d *expertDispatcher) drain(ctx context.Context, roles []types.ExpertRole, ec types.ExpertContext) []types.ExpertEvaluation {
	roles = dedupeRoles(roles)
	if len(roles) == 0 || d.expert == nil {
		return nil
	}

	results := make([]*types.ExpertEvaluation, len(roles))
	g, gctx := errgroup.WithContext(ctx)
	for i, role := range roles {
		i, role := i, role
		g.Go(func() error {
			eval, err := d.expert.Evaluate(gctx, role, ec)
			if err != nil {
				d.log.Warn("expert call failed, omitting evaluation",
					zap.String("role", string(role)),
					zap.Error(err))
				return nil
			}
			eval.Role = role
			results[i] = &eval
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures degrade to omissions

	out := make([]types.ExpertEvaluation, 0, len(roles))
	for _, eval := range results {
		if eval != nil {
			out = append(out, *eval)
		}
	}
	return out
}

// dedupeRoles drops repeated roles, keeping first-selection order.
func dedupeRoles(roles []types.ExpertRole) []types.ExpertRole {
	seen := make(map[types.ExpertRole]struct{}, len(roles))
	out := roles[:0:0]
	for _, role := range roles {
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
