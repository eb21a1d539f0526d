package countries

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry exposes registry functions to expressions.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator runs predicates over country records using
// github.com/expr-lang/expr. Record fields are bound as top level
// variables, so `region == "Europe"` and `record.region == "Europe"` are
// equivalent.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineExpr, errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &exprCompiledRule{
		evaluator:  e,
		program:    program,
		expression: expression,
	}, nil
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	cacheKey := EngineExpr + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.registry != nil {
		options = append(options, exprlang.Function("call", e.callFunction))
		for _, name := range e.registry.Names() {
			options = append(options, exprlang.Function(name, e.registryFunction(name)))
		}
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapEvaluationError(EngineExpr, expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, program)
	}
	return program, nil
}

type exprCompiledRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil || r.program == nil {
		return nil, wrapEvaluatorError(EngineExpr, fmt.Errorf("compiled rule missing program"))
	}
	ctx = ctx.withDefaults()
	result, err := exprlang.Run(r.program, r.evaluator.environment(ctx))
	if err != nil {
		return nil, wrapEvaluationError(EngineExpr, r.expression, ctx.codeLabel(), err)
	}
	return result, nil
}

func (e *exprEvaluator) environment(ctx RuleContext) map[string]any {
	record := ctx.record()
	env := make(map[string]any, len(record)+6)
	for key, value := range record {
		env[key] = value
	}
	env["record"] = record
	env["code"] = ctx.Code
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	return env
}

func (e *exprEvaluator) callFunction(params ...any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("call requires a function name")
	}
	name, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("call name must be string, got %T", params[0])
	}
	return e.registry.Call(name, params[1:]...)
}

func (e *exprEvaluator) registryFunction(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}
