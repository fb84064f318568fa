package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/crown"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/engine"
)

// Step kinds.
const (
	StepEngine     = "engine"
	StepClaim      = "claim"
	StepToggleMood = "toggle_mood"
	StepRelinquish = "relinquish"
	StepSetFee     = "set_fee"
	StepRevoke     = "revoke"
	StepPause      = "pause"
	StepUnpause    = "unpause"
	StepExpect     = "expect"
)

const (
	tokenNull     = "@null"
	tokenSentinel = "@sentinel"
)

// OpenFunc builds the engine a scenario runs against.
type OpenFunc func(ctx context.Context, genesis crown.Genesis) (*engine.Engine, error)

// Runner executes scenarios.
type Runner struct {
	// Genesis supplies defaults the engine step may override.
	Genesis crown.Genesis
	// Open builds the engine. Defaults to an in-memory engine.New.
	Open OpenFunc
	// Assertions controls how mismatched outcomes are reported.
	Assertions AssertionMode
	// Logger reports each step when set.
	Logger *log.Logger
	// Locale renders expected rejections in the log. Defaults to en-US.
	Locale string
}

// Result summarizes a completed run.
type Result struct {
	Engine *engine.Engine
	Steps  int
	// Rejected counts steps that failed as the script expected.
	Rejected int
}

type run struct {
	runner     *Runner
	assertions Assertions
	genesis    crown.Genesis
	engine     *engine.Engine
	result     Result
}

// RunFile loads the script at path and runs it.
func (r *Runner) RunFile(ctx context.Context, path string) (Result, error) {
	scenario, err := LoadFile(path)
	if err != nil {
		return Result{}, err
	}
	return r.Run(ctx, scenario)
}

// Run executes every step of scenario in order and stops at the first step
// whose outcome differs from the script.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) (Result, error) {
	if scenario == nil {
		return Result{}, errors.New("scenario is required")
	}
	state := &run{
		runner:     r,
		assertions: Assertions{Mode: r.Assertions, Logger: r.Logger},
		genesis:    r.Genesis,
	}
	for index, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return state.result, err
		}
		if err := state.step(ctx, step); err != nil {
			return state.result, fmt.Errorf("%s step %d (%s): %w", scenario.Name, index+1, step.Kind, err)
		}
		state.result.Steps++
		if r.Logger != nil {
			r.Logger.Printf("%s: step %d %s ok", scenario.Name, index+1, step.Kind)
		}
	}
	if _, err := state.ensureEngine(ctx); err != nil {
		return state.result, err
	}
	return state.result, nil
}

func (s *run) step(ctx context.Context, step Step) error {
	if step.Kind == StepEngine {
		return s.configure(step.Args)
	}
	eng, err := s.ensureEngine(ctx)
	if err != nil {
		return err
	}
	if step.Kind == StepExpect {
		if err := expectState(eng, step.Args); err != nil {
			return s.assertions.Failf("%w", err)
		}
		return nil
	}

	caller := resolveIdentity(eng, readString(step.Args, "caller"))
	switch step.Kind {
	case StepClaim:
		payment, err := readAmount(step.Args, "payment")
		if err != nil {
			return err
		}
		_, err = eng.Claim(ctx, caller, payment)
		return s.outcome(step, err)
	case StepToggleMood:
		_, err = eng.ToggleMood(ctx, caller)
	case StepRelinquish:
		_, err = eng.Relinquish(ctx, caller, readString(step.Args, "reason"))
	case StepSetFee:
		fee, ferr := readAmount(step.Args, "fee")
		if ferr != nil {
			return ferr
		}
		_, err = eng.SetFee(ctx, caller, fee)
	case StepRevoke:
		_, err = eng.Revoke(ctx, caller)
	case StepPause:
		_, err = eng.Pause(ctx, caller)
	case StepUnpause:
		_, err = eng.Unpause(ctx, caller)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
	return s.outcome(step, err)
}

// outcome compares a call result with the step's expect_error code.
func (s *run) outcome(step Step, err error) error {
	want := strings.TrimSpace(readString(step.Args, "expect_error"))
	if want == "" {
		if err != nil {
			return s.assertions.Failf("unexpected error %s: %w", apperrors.GetCode(err), err)
		}
		return nil
	}
	if err == nil {
		return s.assertions.Failf("expected %s, call succeeded", want)
	}
	if got := apperrors.GetCode(err); string(got) != want {
		return s.assertions.Failf("expected %s, got %s: %w", want, got, err)
	}
	s.result.Rejected++
	if s.runner.Logger != nil {
		s.runner.Logger.Printf("%s rejected as expected: %s", step.Kind, apperrors.Localize(err, s.runner.Locale))
	}
	return nil
}

func (s *run) configure(args map[string]any) error {
	if s.engine != nil {
		return errors.New("engine step must come before any call")
	}
	if id := readString(args, "id"); id != "" {
		s.genesis.EngineID = id
		s.genesis.Sentinel = ""
	}
	if admin := readString(args, "admin"); admin != "" {
		s.genesis.Admin = crown.NormalizeIdentity(admin)
	}
	if _, ok := args["fee"]; ok {
		fee, err := readAmount(args, "fee")
		if err != nil {
			return err
		}
		s.genesis.DefaultFee = fee
	}
	return nil
}

func (s *run) ensureEngine(ctx context.Context) (*engine.Engine, error) {
	if s.engine != nil {
		return s.engine, nil
	}
	if s.genesis.EngineID == "" {
		s.genesis.EngineID = "scenario"
	}
	if s.genesis.Sentinel == "" {
		s.genesis.Sentinel = crown.SentinelFor(s.genesis.EngineID)
	}
	open := s.runner.Open
	if open == nil {
		open = func(_ context.Context, genesis crown.Genesis) (*engine.Engine, error) {
			return engine.New(genesis)
		}
	}
	eng, err := open(ctx, s.genesis)
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	s.engine = eng
	s.result.Engine = eng
	return eng, nil
}

func expectState(eng *engine.Engine, args map[string]any) error {
	state := eng.State()
	var problems []string
	if raw, ok := args["holder"]; ok {
		want := resolveIdentity(eng, fmt.Sprint(raw))
		if state.Holder != want {
			problems = append(problems, fmt.Sprintf("holder = %s, want %s", state.Holder, want))
		}
	}
	if raw, ok := args["mood"]; ok {
		if want, _ := raw.(bool); state.Mood != want {
			problems = append(problems, fmt.Sprintf("mood = %v, want %v", state.Mood, want))
		}
	}
	if raw, ok := args["paused"]; ok {
		if want, _ := raw.(bool); state.Paused != want {
			problems = append(problems, fmt.Sprintf("paused = %v, want %v", state.Paused, want))
		}
	}
	if raw, ok := args["vacant"]; ok {
		if want, _ := raw.(bool); state.Vacant() != want {
			problems = append(problems, fmt.Sprintf("vacant = %v, want %v", state.Vacant(), want))
		}
	}
	if _, ok := args["fee"]; ok {
		want, err := readAmount(args, "fee")
		if err != nil {
			return err
		}
		if state.Fee != want {
			problems = append(problems, fmt.Sprintf("fee = %d, want %d", state.Fee, want))
		}
	}
	if _, ok := args["events"]; ok {
		want, err := readAmount(args, "events")
		if err != nil {
			return err
		}
		if got := eng.LastSeq(); got != want {
			problems = append(problems, fmt.Sprintf("events = %d, want %d", got, want))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("state mismatch: %s", strings.Join(problems, "; "))
	}
	return nil
}

func resolveIdentity(eng *engine.Engine, raw string) crown.Identity {
	switch strings.TrimSpace(raw) {
	case tokenNull:
		return crown.NullIdentity
	case tokenSentinel:
		return eng.Sentinel()
	}
	return crown.Identity(raw)
}

func readString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprint(value)
}

// readAmount accepts non-negative integers or decimal strings, so amounts
// beyond float precision can be written as strings.
func readAmount(args map[string]any, key string) (uint64, error) {
	switch value := args[key].(type) {
	case int64:
		if value < 0 {
			return 0, fmt.Errorf("%s must not be negative", key)
		}
		return uint64(value), nil
	case string:
		amount, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return amount, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be an integer, got %v", key, value)
	}
}
