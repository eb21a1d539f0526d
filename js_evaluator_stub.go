//go:build !js_eval

package countries

import "fmt"

// NewJSEvaluator is unavailable without the js_eval build tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return false
}

func errJSUnavailable() error {
	return fmt.Errorf("countries: %s engine requires the js_eval build tag", EngineJS)
}
