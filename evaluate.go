package countries

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Built-in evaluator engines.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

var (
	// ErrNoEvaluator is returned when an engine name does not resolve.
	ErrNoEvaluator     = errors.New("countries: evaluator not configured")
	errEmptyExpression = errors.New("expression must not be empty")
)

// NewEvaluator builds the named built-in engine. The JS engine is only
// available in binaries built with the js_eval tag.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch strings.ToLower(engine) {
	case "", EngineExpr:
		return NewExprEvaluator(
			ExprWithProgramCache(cache),
			ExprWithFunctionRegistry(registry),
		), nil
	case EngineCEL:
		return NewCELEvaluator(
			CELWithProgramCache(cache),
			CELWithFunctionRegistry(registry),
		), nil
	case EngineJS:
		if !JSEvaluatorAvailable() {
			return nil, errJSUnavailable()
		}
		return NewJSEvaluator(
			JSWithProgramCache(cache),
			JSWithFunctionRegistry(registry),
		), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, engine)
	}
}

// Evaluate runs expression against the country stored under code. The
// record fields, plus code, record, now, args and metadata, are in scope.
func (r *Repository) Evaluate(code, expression string) (any, error) {
	return r.EvaluateWith(RuleContext{Code: code}, expression)
}

// EvaluateWith runs expression against ctx. When ctx.Record is nil the
// country stored under ctx.Code is used.
func (r *Repository) EvaluateWith(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(r.engineName(), errEmptyExpression)
	}
	if ctx.Record == nil {
		key, err := normalizeCode(ctx.Code)
		if err != nil {
			return nil, err
		}
		code := strings.ToUpper(key)
		record, ok := r.countries.Get(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, ctx.Code)
		}
		ctx.Code = code
		ctx.Record = record
	}
	ctx = ctx.withDefaults()

	start := time.Now()
	value, err := r.evaluator.Evaluate(ctx, expression)
	err = wrapEvaluationError(r.engineName(), expression, ctx.codeLabel(), err)
	r.cfg.evaluatorLogOrNoop().LogEvaluation(EvaluatorLogEvent{
		Engine:   r.engineName(),
		Expr:     expression,
		Code:     ctx.codeLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *Repository) engineName() string {
	return evaluatorEngineName(r.evaluator)
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return EngineExpr
	case *celEvaluator:
		return EngineCEL
	default:
		if fmt.Sprintf("%T", e) == "*countries.jsEvaluator" {
			return EngineJS
		}
		return "custom"
	}
}
