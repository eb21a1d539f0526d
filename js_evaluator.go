//go:build js_eval

package countries

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator runs expressions in a fresh goja runtime per record. Runtimes
// are not shared, so evaluation is safe from concurrent callers.
type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}

func errJSUnavailable() error {
	return nil
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineJS, errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	cacheKey := EngineJS + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("predicate.js", wrapJSExpression(expression), true)
	if err != nil {
		return nil, wrapEvaluationError(EngineJS, expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx RuleContext, program *goja.Program) (any, error) {
	vm := goja.New()
	if err := e.injectContext(vm, ctx); err != nil {
		return nil, err
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func (e *jsEvaluator) injectContext(vm *goja.Runtime, ctx RuleContext) error {
	record := ctx.record()
	bindings := make(map[string]any, len(record)+6)
	for key, value := range record {
		bindings[key] = value
	}
	bindings["record"] = record
	bindings["code"] = ctx.Code
	bindings["now"] = ctx.timestamp()
	bindings["args"] = ctx.Args
	bindings["metadata"] = ctx.Metadata
	if e.registry != nil {
		bindings["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
		for _, name := range e.registry.Names() {
			fn := name
			bindings[fn] = func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			}
		}
	}
	for key, value := range bindings {
		if err := vm.Set(key, value); err != nil {
			return fmt.Errorf("bind %q: %w", key, err)
		}
	}
	return nil
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil || r.program == nil {
		return nil, wrapEvaluatorError(EngineJS, fmt.Errorf("compiled rule missing program"))
	}
	ctx = ctx.withDefaults()
	value, err := r.evaluator.run(ctx, r.program)
	if err != nil {
		return nil, wrapEvaluationError(EngineJS, r.expression, ctx.codeLabel(), err)
	}
	return value, nil
}
