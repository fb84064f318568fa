package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is an ordered list of steps loaded from a script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted call or expectation.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadFile executes the script at path and returns the Scenario it builds.
func LoadFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "engine", Function: scenarioEngine},
	{Name: "claim", Function: scenarioClaim},
	{Name: "toggle_mood", Function: callerStep(StepToggleMood)},
	{Name: "relinquish", Function: scenarioRelinquish},
	{Name: "set_fee", Function: scenarioSetFee},
	{Name: "revoke", Function: callerStep(StepRevoke)},
	{Name: "pause", Function: callerStep(StepPause)},
	{Name: "unpause", Function: callerStep(StepUnpause)},
	{Name: "expect", Function: scenarioExpect},
}

func scenarioEngine(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, StepEngine, tableToMap(state, 2))
	return 0
}

func scenarioClaim(state *lua.State) int {
	scenario := checkScenario(state)
	caller := lua.CheckString(state, 2)
	data := optionalTable(state, 4)
	data["caller"] = caller
	data["payment"] = luaToGo(state, 3)
	appendStep(scenario, StepClaim, data)
	return 0
}

func scenarioRelinquish(state *lua.State) int {
	scenario := checkScenario(state)
	caller := lua.CheckString(state, 2)
	reason := lua.OptString(state, 3, "")
	data := optionalTable(state, 4)
	data["caller"] = caller
	data["reason"] = reason
	appendStep(scenario, StepRelinquish, data)
	return 0
}

func scenarioSetFee(state *lua.State) int {
	scenario := checkScenario(state)
	caller := lua.CheckString(state, 2)
	data := optionalTable(state, 4)
	data["caller"] = caller
	data["fee"] = luaToGo(state, 3)
	appendStep(scenario, StepSetFee, data)
	return 0
}

func scenarioExpect(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, StepExpect, tableToMap(state, 2))
	return 0
}

// callerStep builds methods shaped like s:kind(caller[, opts]).
func callerStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		caller := lua.CheckString(state, 2)
		data := optionalTable(state, 3)
		data["caller"] = caller
		appendStep(scenario, kind, data)
		return 0
	}
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToMap(state, index)
	default:
		return nil
	}
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) < 1<<63 {
		return int64(value)
	}
	return value
}
