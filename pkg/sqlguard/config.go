package sqlguard

import (
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("risklevel", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, ok := ParseRiskLevel(s)
		return ok
	})
	return v
}

// GlobalConfig carries the options recognised across the whole catalog,
// per spec §6.3.
type GlobalConfig struct {
	StrictParse         bool  `mapstructure:"strict_parse" yaml:"strict_parse"`
	ParseCacheCapacity  int   `mapstructure:"parse_cache_capacity" yaml:"parse_cache_capacity" validate:"gte=0"`
	DedupCacheCapacity  int   `mapstructure:"dedup_cache_capacity" yaml:"dedup_cache_capacity" validate:"gte=0"`
	DedupTTLMillis      int64 `mapstructure:"dedup_ttl_ms" yaml:"dedup_ttl_ms" validate:"gte=0"`
}

// DefaultGlobalConfig returns the defaults named in spec §4.2: capacity
// 1000 entries per thread, TTL 100ms; parse cache capacity of 2048
// entries is this implementation's own sizing choice (unspecified by the
// spec) chosen to comfortably cover a busy host's working set of distinct
// statement shapes.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		StrictParse:        false,
		ParseCacheCapacity: 2048,
		DedupCacheCapacity: 1000,
		DedupTTLMillis:     100,
	}
}

func (c GlobalConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &ConfigError{Field: "global", Value: c, Msg: err.Error()}
	}
	return nil
}

// CheckerBase is embedded by every per-checker config struct, supplying
// the {enabled, riskLevel override} pair every checker needs at minimum.
type CheckerBase struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	RiskLevelOverride string `mapstructure:"risk_level" yaml:"risk_level" validate:"risklevel"`
}

// Resolve returns the override level if set, otherwise the supplied
// default.
func (b CheckerBase) Resolve(def RiskLevel) RiskLevel {
	if b.RiskLevelOverride == "" {
		return def
	}
	lvl, ok := ParseRiskLevel(b.RiskLevelOverride)
	if !ok {
		return def
	}
	return lvl
}

func (b CheckerBase) validate(field string) error {
	if err := validate.Struct(b); err != nil {
		return &ConfigError{Field: field, Value: b, Msg: err.Error()}
	}
	return nil
}

// Structural safety

type MissingWhereConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

type DummyPredicateConfig struct {
	CheckerBase   `mapstructure:",squash" yaml:",inline"`
	ExtraPatterns []string `mapstructure:"extra_patterns" yaml:"extra_patterns"`
}

type BlacklistOnlyWhereConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
	Fields      []string `mapstructure:"fields" yaml:"fields"`
}

type WhitelistRequiredConfig struct {
	CheckerBase             `mapstructure:",squash" yaml:",inline"`
	ByTable                 map[string][]string `mapstructure:"by_table" yaml:"by_table"`
	EnforceForUnknownTables bool                `mapstructure:"enforce_for_unknown_tables" yaml:"enforce_for_unknown_tables"`
	GlobalFields            []string            `mapstructure:"global_fields" yaml:"global_fields"`
}

// Pagination hygiene

type LogicalPaginationConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

type PaginationWithoutPredicateConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

type DeepOffsetConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
	Threshold   int64 `mapstructure:"threshold" yaml:"threshold" validate:"gte=0"`
}

func DefaultDeepOffsetConfig() DeepOffsetConfig {
	return DeepOffsetConfig{CheckerBase: CheckerBase{Enabled: true}, Threshold: 1000}
}

type LargePageSizeConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
	Threshold   int64 `mapstructure:"threshold" yaml:"threshold" validate:"gte=0"`
}

func DefaultLargePageSizeConfig() LargePageSizeConfig {
	return LargePageSizeConfig{CheckerBase: CheckerBase{Enabled: true}, Threshold: 500}
}

type UnorderedPaginationConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

type UnboundedSelectConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

// SQL-injection shapes

type StackedStatementsConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

type SetOperationUseConfig struct {
	CheckerBase       `mapstructure:",squash" yaml:",inline"`
	AllowedOperations []string `mapstructure:"allowed_operations" yaml:"allowed_operations"`
}

type CommentPresentConfig struct {
	CheckerBase         `mapstructure:",squash" yaml:",inline"`
	AllowOptimizerHints bool `mapstructure:"allow_optimizer_hints" yaml:"allow_optimizer_hints"`
}

type FileOutConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

type DangerousFunctionsConfig struct {
	CheckerBase     `mapstructure:",squash" yaml:",inline"`
	DeniedFunctions []string `mapstructure:"denied_functions" yaml:"denied_functions"`
}

func DefaultDangerousFunctionsConfig() DangerousFunctionsConfig {
	return DangerousFunctionsConfig{
		CheckerBase: CheckerBase{Enabled: true},
		DeniedFunctions: []string{
			"load_file", "sleep", "benchmark", "sys_exec", "sys_eval",
			"into_outfile", "into_dumpfile",
		},
	}
}

// Access control / operation gating

type DdlInDmlContextConfig struct {
	CheckerBase       `mapstructure:",squash" yaml:",inline"`
	AllowedOperations []string `mapstructure:"allowed_operations" yaml:"allowed_operations"`
}

type ProcedureCallConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

type MetadataQueriesConfig struct {
	CheckerBase       `mapstructure:",squash" yaml:",inline"`
	AllowedStatements []string `mapstructure:"allowed_statements" yaml:"allowed_statements"`
}

type SessionMutationConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
}

type DeniedTableConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
	Patterns    []string `mapstructure:"patterns" yaml:"patterns"`
}

type ReadOnlyTableConfig struct {
	CheckerBase `mapstructure:",squash" yaml:",inline"`
	Patterns    []string `mapstructure:"patterns" yaml:"patterns"`
}

// CatalogConfig is the full, strongly-typed configuration tree for the
// default checker catalog (checkers.Default). Hosts that build a custom
// catalog may ignore this and supply their own slice of pre-constructed
// checkers instead; CatalogConfig exists to support the common case of
// "one YAML/JSON tree in, one Validator out" shown by cmd/sqlguard.
type CatalogConfig struct {
	Global GlobalConfig `mapstructure:"global" yaml:"global"`

	MissingWhere                MissingWhereConfig                `mapstructure:"missing_where" yaml:"missing_where"`
	DummyPredicate               DummyPredicateConfig              `mapstructure:"dummy_predicate" yaml:"dummy_predicate"`
	BlacklistOnlyWhere           BlacklistOnlyWhereConfig          `mapstructure:"blacklist_only_where" yaml:"blacklist_only_where"`
	WhitelistRequired            WhitelistRequiredConfig           `mapstructure:"whitelist_required" yaml:"whitelist_required"`
	LogicalPagination            LogicalPaginationConfig           `mapstructure:"logical_pagination" yaml:"logical_pagination"`
	PaginationWithoutPredicate   PaginationWithoutPredicateConfig  `mapstructure:"pagination_without_predicate" yaml:"pagination_without_predicate"`
	DeepOffset                   DeepOffsetConfig                  `mapstructure:"deep_offset" yaml:"deep_offset"`
	LargePageSize                LargePageSizeConfig               `mapstructure:"large_page_size" yaml:"large_page_size"`
	UnorderedPagination           UnorderedPaginationConfig         `mapstructure:"unordered_pagination" yaml:"unordered_pagination"`
	UnboundedSelect               UnboundedSelectConfig             `mapstructure:"unbounded_select" yaml:"unbounded_select"`
	StackedStatements             StackedStatementsConfig           `mapstructure:"stacked_statements" yaml:"stacked_statements"`
	SetOperationUse               SetOperationUseConfig             `mapstructure:"set_operation_use" yaml:"set_operation_use"`
	CommentPresent                CommentPresentConfig              `mapstructure:"comment_present" yaml:"comment_present"`
	FileOut                       FileOutConfig                     `mapstructure:"file_out" yaml:"file_out"`
	DangerousFunctions             DangerousFunctionsConfig          `mapstructure:"dangerous_functions" yaml:"dangerous_functions"`
	DdlInDmlContext                DdlInDmlContextConfig             `mapstructure:"ddl_in_dml_context" yaml:"ddl_in_dml_context"`
	ProcedureCall                  ProcedureCallConfig               `mapstructure:"procedure_call" yaml:"procedure_call"`
	MetadataQueries                MetadataQueriesConfig             `mapstructure:"metadata_queries" yaml:"metadata_queries"`
	SessionMutation                 SessionMutationConfig             `mapstructure:"session_mutation" yaml:"session_mutation"`
	DeniedTable                     DeniedTableConfig                 `mapstructure:"denied_table" yaml:"denied_table"`
	ReadOnlyTable                   ReadOnlyTableConfig               `mapstructure:"read_only_table" yaml:"read_only_table"`
}

// DefaultCatalogConfig returns every checker enabled with the severities
// and thresholds named in spec §4.6.
func DefaultCatalogConfig() CatalogConfig {
	enabled := CheckerBase{Enabled: true}
	return CatalogConfig{
		Global:                      DefaultGlobalConfig(),
		MissingWhere:                MissingWhereConfig{CheckerBase: enabled},
		DummyPredicate:              DummyPredicateConfig{CheckerBase: enabled},
		BlacklistOnlyWhere:          BlacklistOnlyWhereConfig{CheckerBase: enabled},
		WhitelistRequired:           WhitelistRequiredConfig{CheckerBase: enabled},
		LogicalPagination:           LogicalPaginationConfig{CheckerBase: enabled},
		PaginationWithoutPredicate:  PaginationWithoutPredicateConfig{CheckerBase: enabled},
		DeepOffset:                  DefaultDeepOffsetConfig(),
		LargePageSize:               DefaultLargePageSizeConfig(),
		UnorderedPagination:         UnorderedPaginationConfig{CheckerBase: enabled},
		UnboundedSelect:             UnboundedSelectConfig{CheckerBase: enabled},
		StackedStatements:           StackedStatementsConfig{CheckerBase: enabled},
		SetOperationUse:             SetOperationUseConfig{CheckerBase: enabled},
		CommentPresent:              CommentPresentConfig{CheckerBase: enabled},
		FileOut:                     FileOutConfig{CheckerBase: enabled},
		DangerousFunctions:          DefaultDangerousFunctionsConfig(),
		DdlInDmlContext:             DdlInDmlContextConfig{CheckerBase: enabled},
		ProcedureCall:               ProcedureCallConfig{CheckerBase: enabled},
		MetadataQueries:             MetadataQueriesConfig{CheckerBase: enabled},
		SessionMutation:             SessionMutationConfig{CheckerBase: enabled},
		DeniedTable:                 DeniedTableConfig{CheckerBase: enabled},
		ReadOnlyTable:               ReadOnlyTableConfig{CheckerBase: enabled},
	}
}

// Validate runs eager struct-tag validation over every checker config and
// the global config, returning the first ConfigError found.
func (c CatalogConfig) Validate() error {
	if err := c.Global.Validate(); err != nil {
		return err
	}
	bases := map[string]CheckerBase{
		"missing_where":                c.MissingWhere.CheckerBase,
		"dummy_predicate":              c.DummyPredicate.CheckerBase,
		"blacklist_only_where":         c.BlacklistOnlyWhere.CheckerBase,
		"whitelist_required":           c.WhitelistRequired.CheckerBase,
		"logical_pagination":           c.LogicalPagination.CheckerBase,
		"pagination_without_predicate": c.PaginationWithoutPredicate.CheckerBase,
		"deep_offset":                  c.DeepOffset.CheckerBase,
		"large_page_size":              c.LargePageSize.CheckerBase,
		"unordered_pagination":         c.UnorderedPagination.CheckerBase,
		"unbounded_select":             c.UnboundedSelect.CheckerBase,
		"stacked_statements":           c.StackedStatements.CheckerBase,
		"set_operation_use":            c.SetOperationUse.CheckerBase,
		"comment_present":              c.CommentPresent.CheckerBase,
		"file_out":                     c.FileOut.CheckerBase,
		"dangerous_functions":          c.DangerousFunctions.CheckerBase,
		"ddl_in_dml_context":           c.DdlInDmlContext.CheckerBase,
		"procedure_call":               c.ProcedureCall.CheckerBase,
		"metadata_queries":             c.MetadataQueries.CheckerBase,
		"session_mutation":             c.SessionMutation.CheckerBase,
		"denied_table":                 c.DeniedTable.CheckerBase,
		"read_only_table":              c.ReadOnlyTable.CheckerBase,
	}
	for field, base := range bases {
		if err := base.validate(field); err != nil {
			return err
		}
	}
	if c.DeepOffset.Threshold < 0 {
		return &ConfigError{Field: "deep_offset.threshold", Value: c.DeepOffset.Threshold, Msg: "must be >= 0"}
	}
	if c.LargePageSize.Threshold < 0 {
		return &ConfigError{Field: "large_page_size.threshold", Value: c.LargePageSize.Threshold, Msg: "must be >= 0"}
	}
	return nil
}
