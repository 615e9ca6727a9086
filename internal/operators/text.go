package operators

import (
	"fmt"
	"strings"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/zerr"
)

// FormatName is the name of the Format operator.
const FormatName = "Format"

// NewFormat returns the Format symbol. It renders the values connected to Values with
// a fmt template. An empty template joins the values with spaces.
func NewFormat() *domain.Symbol {
	template, values := Slot(FormatName, "Template"), Slot(FormatName, "Values")
	return define(FormatName).
		in("Template", String, "").
		multi("Values", Any).
		out("Result", String, domain.TriggerNone).
		build(stateless(func(_ domain.EvalContext, in domain.Inputs) (any, error) {
			args := in.Values(values)
			tmpl := domain.Input[string](in, template)
			if tmpl == "" {
				parts := make([]string, len(args))
				for i, a := range args {
					parts[i] = fmt.Sprint(a)
				}
				return strings.Join(parts, " "), nil
			}
			out := fmt.Sprintf(tmpl, args...)
			if strings.Contains(out, "%!") {
				return nil, zerr.With(zerr.New("template does not match its values"), "result", out)
			}
			return out, nil
		}))
}
