package countries

import (
	"io/fs"
	"time"

	"github.com/goliatone/go-countries/internal/loader"
	layering "github.com/goliatone/go-countries/layering"
	"github.com/goliatone/go-countries/pkg/activity"
)

// Record is a parsed JSON object from the dataset.
type Record = map[string]any

// Repository serves the bundled country reference data. The country dataset
// is loaded once by New and is read-only afterwards; every other dataset is
// read on demand.
type Repository struct {
	cfg       repositoryConfig
	loader    *loader.Loader
	defaults  *layering.Map[any]
	overloads *layering.Map[any]
	countries *layering.Map[any]
	cache     ResultCache
	hydrator  Hydrator
	evaluator Evaluator
	emitter   *activity.Emitter
	loadID    string
}

// RuleContext carries inputs needed when evaluating an expression against a
// single dataset entry.
type RuleContext struct {
	Record   any
	Code     string
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) codeLabel() string {
	if ctx.Code != "" {
		return ctx.Code
	}
	return "unknown"
}

// record returns the entry as a generic map so expressions can address its
// fields directly.
func (ctx RuleContext) record() map[string]any {
	if m := recordOf(ctx.Record); m != nil {
		return m
	}
	return map[string]any{}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

// Option configures a Repository.
type Option func(*repositoryConfig)

type repositoryConfig struct {
	dataDir         string
	fsys            fs.FS
	hydrator        Hydrator
	hydrateBefore   bool
	resultCache     ResultCache
	logger          Logger
	evaluatorLogger EvaluatorLogger
	evaluator       Evaluator
	engine          string
	programCache    ProgramCache
	functions       *FunctionRegistry
	activityHooks   activity.Hooks
	activityChannel string
}

func applyOptions(opts []Option) repositoryConfig {
	cfg := repositoryConfig{
		dataDir: DefaultDataDir,
		engine:  EngineExpr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg repositoryConfig) logOrNoop() Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopLogger{}
}

func (cfg repositoryConfig) evaluatorLogOrNoop() EvaluatorLogger {
	if cfg.evaluatorLogger != nil {
		return cfg.evaluatorLogger
	}
	return noopEvaluatorLogger{}
}
