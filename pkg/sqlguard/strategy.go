package sqlguard

// Outcome is the behavioural verdict the Strategy Dispatcher maps a
// finished ValidationResult to. FAIL is the only outcome that raises from
// the host's perspective; the others return normally.
type Outcome int

const (
	IGNORE Outcome = iota
	LOG
	WARN
	FAIL
)

func (o Outcome) String() string {
	switch o {
	case IGNORE:
		return "IGNORE"
	case LOG:
		return "LOG"
	case WARN:
		return "WARN"
	case FAIL:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// StrategyConfig configures the dispatcher: a global mapping from risk
// level to outcome, optionally overridden per checker ID. The roll-out
// convention named in spec §4.9 is to migrate a new rule through
// LOG -> WARN -> FAIL by editing PerChecker.
type StrategyConfig struct {
	ByRiskLevel map[RiskLevel]Outcome
	PerChecker  map[string]Outcome
}

// DefaultStrategyConfig maps SAFE to IGNORE, LOW to LOG, MEDIUM to WARN,
// and HIGH/CRITICAL to FAIL, except ProcedureCall, which maps to WARN —
// a reasonable default a host overrides to roll a new checker out
// gradually.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		ByRiskLevel: map[RiskLevel]Outcome{
			SAFE:     IGNORE,
			LOW:      LOG,
			MEDIUM:   WARN,
			HIGH:     FAIL,
			CRITICAL: FAIL,
		},
		PerChecker: map[string]Outcome{
			"ProcedureCall": WARN,
		},
	}
}

// StrategyDispatcher turns a finished ValidationResult into an Outcome.
type StrategyDispatcher struct {
	cfg StrategyConfig
}

func NewStrategyDispatcher(cfg StrategyConfig) *StrategyDispatcher {
	return &StrategyDispatcher{cfg: cfg}
}

// Dispatch returns the outcome for the result as a whole: the maximum
// outcome over every violation, where maximum follows FAIL > WARN > LOG >
// IGNORE. A per-checker override takes precedence over the risk-level
// mapping for that violation's checker.
func (d *StrategyDispatcher) Dispatch(result *ValidationResult) Outcome {
	best := IGNORE
	for _, v := range result.Violations() {
		outcome, ok := d.cfg.PerChecker[v.CheckerID]
		if !ok {
			outcome = d.cfg.ByRiskLevel[v.RiskLevel]
		}
		if outcome > best {
			best = outcome
		}
	}
	return best
}
