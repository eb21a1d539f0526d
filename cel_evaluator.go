package countries

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celMaxCallArgs bounds the arity of the call() overloads and of registry
// functions exposed to CEL, which has no variadic overloads.
const celMaxCallArgs = 4

var celIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var celKeywords = map[string]struct{}{
	"true": {}, "false": {}, "null": {}, "in": {},
	"as": {}, "break": {}, "const": {}, "continue": {}, "else": {},
	"for": {}, "function": {}, "if": {}, "import": {}, "let": {},
	"loop": {}, "package": {}, "namespace": {}, "return": {}, "var": {}, "void": {}, "while": {},
}

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry exposes registry functions to CEL programs.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// celEvaluator type checks programs against the fields of the record being
// evaluated. Programs are cached per expression and record field set.
type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile only validates that expression parses; type checking needs the
// record fields and happens on first evaluation.
func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineCEL, errEmptyExpression)
	}
	env, err := celgo.NewEnv()
	if err != nil {
		return nil, wrapEvaluatorError(EngineCEL, err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, "", issues.Err())
	}
	return &celCompiledRule{evaluator: e, expression: expression}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, fields []string) (celgo.Program, error) {
	cacheKey := EngineCEL + ":" + strings.Join(fields, ",") + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(fields)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, program)
	}
	return program, nil
}

func (e *celEvaluator) buildEnv(fields []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("record", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("code", celgo.StringType),
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("metadata", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.CrossTypeNumericComparisons(true),
	}
	for _, field := range fields {
		opts = append(opts, celgo.Variable(field, celgo.DynType))
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", e.callOverloads()...))
		for _, name := range e.registry.Names() {
			opts = append(opts, celgo.Function(name, e.functionOverloads(name)...))
		}
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx RuleContext, record map[string]any, fields []string) map[string]any {
	activation := make(map[string]any, len(fields)+5)
	for _, field := range fields {
		activation[field] = record[field]
	}
	activation["record"] = record
	activation["code"] = ctx.Code
	activation["now"] = ctx.timestamp()
	activation["args"] = ctx.Args
	activation["metadata"] = ctx.Metadata
	return activation
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError(EngineCEL, fmt.Errorf("compiled rule missing evaluator"))
	}
	ctx = ctx.withDefaults()
	record := ctx.record()
	fields := celFields(record)
	program, err := r.evaluator.loadOrCompile(r.expression, fields)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, r.expression, ctx.codeLabel(), err)
	}
	out, _, err := program.Eval(r.evaluator.activation(ctx, record, fields))
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, r.expression, ctx.codeLabel(), err)
	}
	return out.Value(), nil
}

// celFields lists the record keys that can be declared as CEL variables.
// Keys that are not identifiers stay reachable through record["key"].
func celFields(record map[string]any) []string {
	fields := make([]string, 0, len(record))
	for key := range record {
		if !celIdentifier.MatchString(key) {
			continue
		}
		if _, reserved := reservedNames[key]; reserved {
			continue
		}
		if _, keyword := celKeywords[key]; keyword {
			continue
		}
		fields = append(fields, key)
	}
	slices.Sort(fields)
	return fields
}

func (e *celEvaluator) callOverloads() []celgo.FunctionOpt {
	overloads := make([]celgo.FunctionOpt, 0, celMaxCallArgs+1)
	for arity := 0; arity <= celMaxCallArgs; arity++ {
		argTypes := append([]*celgo.Type{celgo.StringType}, dynTypes(arity)...)
		overloads = append(overloads, celgo.Overload(
			fmt.Sprintf("call_string_dyn%d", arity),
			argTypes,
			celgo.DynType,
			celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
				name, ok := values[0].Value().(string)
				if !ok {
					return types.NewErr("countries: call name must be string")
				}
				return e.invoke(name, values[1:])
			}),
		))
	}
	return overloads
}

func (e *celEvaluator) functionOverloads(name string) []celgo.FunctionOpt {
	overloads := make([]celgo.FunctionOpt, 0, celMaxCallArgs+1)
	for arity := 0; arity <= celMaxCallArgs; arity++ {
		overloads = append(overloads, celgo.Overload(
			fmt.Sprintf("%s_dyn%d", name, arity),
			dynTypes(arity),
			celgo.DynType,
			celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
				return e.invoke(name, values)
			}),
		))
	}
	return overloads
}

func (e *celEvaluator) invoke(name string, values []ref.Val) ref.Val {
	if e.registry == nil {
		return types.NewErr("countries: function registry not configured")
	}
	args := make([]any, 0, len(values))
	for _, val := range values {
		args = append(args, val.Value())
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

func dynTypes(n int) []*celgo.Type {
	out := make([]*celgo.Type, n)
	for i := range out {
		out[i] = celgo.DynType
	}
	return out
}
