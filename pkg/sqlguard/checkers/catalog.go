// Package checkers provides the catalog of concrete SQL safety checkers:
// structural safety, pagination hygiene, SQL-injection shapes, and access
// control / operation gating, as specified.
package checkers

import "github.com/wmenjoy/sql-tools/pkg/sqlguard"

// Default returns the full catalog in the declared order used by the
// reference deployment: structural safety first (cheapest, most
// actionable), then pagination hygiene, then injection shapes, then
// access control. Order is significant per spec §4.7/§9 — callers that
// need a different order should build their own slice and pass it to
// sqlguard.NewOrchestrator directly.
func Default(cfg sqlguard.CatalogConfig) []sqlguard.Checker {
	return []sqlguard.Checker{
		NewMissingWhere(cfg.MissingWhere),
		NewDummyPredicate(cfg.DummyPredicate),
		NewBlacklistOnlyWhere(cfg.BlacklistOnlyWhere),
		NewWhitelistRequired(cfg.WhitelistRequired),

		NewLogicalPagination(cfg.LogicalPagination),
		NewPaginationWithoutPredicate(cfg.PaginationWithoutPredicate),
		NewDeepOffset(cfg.DeepOffset),
		NewLargePageSize(cfg.LargePageSize),
		NewUnorderedPagination(cfg.UnorderedPagination),
		NewUnboundedSelect(cfg.UnboundedSelect, cfg.BlacklistOnlyWhere.Fields),

		NewStackedStatements(cfg.StackedStatements),
		NewSetOperationUse(cfg.SetOperationUse),
		NewCommentPresent(cfg.CommentPresent),
		NewFileOut(cfg.FileOut),
		NewDangerousFunctions(cfg.DangerousFunctions),

		NewDdlInDmlContext(cfg.DdlInDmlContext),
		NewProcedureCall(cfg.ProcedureCall),
		NewMetadataQueries(cfg.MetadataQueries),
		NewSessionMutation(cfg.SessionMutation),
		NewDeniedTable(cfg.DeniedTable),
		NewReadOnlyTable(cfg.ReadOnlyTable),
	}
}
