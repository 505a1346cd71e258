package main

import (
	"context"
	"fmt"
	"log"
)

// applyPlan runs the plan against the target in order, stopping at the
// first failure.
func applyPlan(ctx context.Context, db execer, plan *Plan) error {
	for i, st := range plan.Statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("  [%d/%d] %s", i+1, len(plan.Statements), st.SQL)
		if _, err := db.ExecContext(ctx, st.SQL); err != nil {
			return fmt.Errorf("%s %s.%s: %w\nSQL: %s", st.Action, st.Table, st.KeyName, err, st.SQL)
		}
	}
	return nil
}

// runApply wraps applyPlan with the configured hooks.
func runApply(ctx context.Context, db execer, cfg *SyncConfig, plan *Plan) error {
	if err := loadAndExecSQLFiles(ctx, db, cfg, cfg.Hooks.BeforeApply, "before_apply"); err != nil {
		return fmt.Errorf("before_apply hooks: %w", err)
	}
	if err := applyPlan(ctx, db, plan); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	if err := loadAndExecSQLFiles(ctx, db, cfg, cfg.Hooks.AfterApply, "after_apply"); err != nil {
		return fmt.Errorf("after_apply hooks: %w", err)
	}
	return nil
}
