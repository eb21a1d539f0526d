package countries

import (
	"io/fs"

	"github.com/goliatone/go-countries/pkg/activity"
)

// DefaultDataDir is the data root used when neither WithDataDir nor WithFS
// is supplied.
const DefaultDataDir = "data"

// WithDataDir reads the dataset from dir on the local disk.
func WithDataDir(dir string) Option {
	return func(cfg *repositoryConfig) {
		if dir != "" {
			cfg.dataDir = dir
		}
	}
}

// WithFS reads the dataset from fsys, typically an embed.FS. It takes
// precedence over WithDataDir.
func WithFS(fsys fs.FS) Option {
	return func(cfg *repositoryConfig) {
		cfg.fsys = fsys
	}
}

// WithHydrator replaces the default country hydrator.
func WithHydrator(h Hydrator) Option {
	return func(cfg *repositoryConfig) {
		cfg.hydrator = h
	}
}

// WithHydrateBefore hydrates results of Call before they are cached.
func WithHydrateBefore(enabled bool) Option {
	return func(cfg *repositoryConfig) {
		cfg.hydrateBefore = enabled
	}
}

// WithResultCache shares a result cache between repositories.
func WithResultCache(cache ResultCache) Option {
	return func(cfg *repositoryConfig) {
		cfg.resultCache = cache
	}
}

// WithLogger attaches a logger; *slog.Logger satisfies Logger.
func WithLogger(logger Logger) Option {
	return func(cfg *repositoryConfig) {
		cfg.logger = logger
	}
}

// WithEvaluatorLogger attaches an evaluator logger.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *repositoryConfig) {
		if logger == nil {
			cfg.evaluatorLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evaluatorLogger = logger
	}
}

// WithEvaluator configures the evaluator used by Collection.WhereExpr and
// Repository.Evaluate. It takes precedence over WithEngine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *repositoryConfig) {
		cfg.evaluator = e
	}
}

// WithEngine selects a built-in evaluator: "expr", "cel" or "js".
func WithEngine(engine string) Option {
	return func(cfg *repositoryConfig) {
		if engine != "" {
			cfg.engine = engine
		}
	}
}

// WithProgramCache registers a cache for compiled expression programs.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *repositoryConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes registry functions to expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *repositoryConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for expressions.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *repositoryConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithActivityHooks attaches activity hooks notified about dataset loads and
// computed operations. Nil hooks are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Compact()
	return func(cfg *repositoryConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *repositoryConfig) {
		cfg.activityChannel = channel
	}
}

// WithConfig applies a Config loaded from file or environment.
func WithConfig(c Config) Option {
	return func(cfg *repositoryConfig) {
		if c.DataDir != "" {
			cfg.dataDir = c.DataDir
		}
		if c.Engine != "" {
			cfg.engine = c.Engine
		}
		if c.ProgramCacheSize > 0 && cfg.programCache == nil {
			cfg.programCache = NewProgramCache(c.ProgramCacheSize)
		}
		cfg.hydrateBefore = c.Hydrate.Before
	}
}
