package bot

import (
	"errors"
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/kasuganosora/botbrain/game/absm"
)

// ErrBinding is returned for a parameter expression that does not compile or
// does not yield a bool, int or float.
var ErrBinding = errors.New("bot: invalid parameter binding")

// Inputs are the per-frame values bindings are evaluated against.
type Inputs struct {
	Walk                bool
	Scream              bool
	Dead                bool
	Attack              bool
	Aim                 bool
	WasHit              bool
	AttackEnded         bool
	AttackIndex         int
	MovementSpeedFactor float64
	MovementType        int
}

func (in Inputs) env() map[string]any {
	return map[string]any{
		"walk":                  in.Walk,
		"scream":                in.Scream,
		"dead":                  in.Dead,
		"attack":                in.Attack,
		"aim":                   in.Aim,
		"was_hit":               in.WasHit,
		"attack_ended":          in.AttackEnded,
		"attack_index":          in.AttackIndex,
		"movement_speed_factor": in.MovementSpeedFactor,
		"movement_type":         in.MovementType,
	}
}

type binding struct {
	param   string
	source  string
	program *vm.Program
	kind    absm.ParameterKind
}

// Bindings derive machine parameters from Inputs.
type Bindings struct {
	list []binding
}

// CompileBindings compiles param -> expression pairs. Each expression is run
// once against zero Inputs to fix the parameter kind.
func CompileBindings(src map[string]string) (*Bindings, error) {
	proto := Inputs{}.env()
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	b := &Bindings{list: make([]binding, 0, len(names))}
	for _, name := range names {
		program, err := expr.Compile(src[name], expr.Env(proto))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBinding, name, err)
		}
		out, err := expr.Run(program, proto)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBinding, name, err)
		}
		p, ok := toParameter(out)
		if !ok {
			return nil, fmt.Errorf("%w: %s yields %T", ErrBinding, name, out)
		}
		b.list = append(b.list, binding{param: name, source: src[name], program: program, kind: p.Kind})
	}
	return b, nil
}

func toParameter(v any) (absm.Parameter, bool) {
	switch x := v.(type) {
	case bool:
		return absm.Rule(x), true
	case int:
		if x < 0 {
			x = 0
		}
		return absm.Index(uint32(x)), true
	case float64:
		return absm.Weight(x), true
	}
	return absm.Parameter{}, false
}

// Len returns the number of bindings.
func (b *Bindings) Len() int { return len(b.list) }

// Apply evaluates every binding and sets the result on m. Bindings whose
// result kind changed are skipped and reported.
func (b *Bindings) Apply(m *absm.Machine, in Inputs) error {
	env := in.env()
	var errs []error
	for _, bd := range b.list {
		out, err := expr.Run(bd.program, env)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", bd.param, err))
			continue
		}
		p, ok := toParameter(out)
		if !ok || p.Kind != bd.kind {
			errs = append(errs, fmt.Errorf("%w: %s yields %T", ErrBinding, bd.param, out))
			continue
		}
		m.SetParameter(bd.param, p)
	}
	return errors.Join(errs...)
}
