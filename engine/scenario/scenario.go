// Package scenario loads scripted camera scenarios written in Lua and plays them through a director.
//
// A script builds a scenario and returns it:
//
//	local s = Scenario.new("raise hands")
//	s:hold(3.5)
//	s:pose{ left_hand = {-0.2, 1.9, -0.2}, right_hand = {0.2, 1.9, -0.2} }
//	s:hold(1)
//	s:expect("first_person")
//	return s
package scenario

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-fpscam/engine/behavior"
	"github.com/Shopify/go-lua"
	"github.com/go-gl/mathgl/mgl32"
)

const scenarioTypeName = "fpscam.scenario"

// ErrInvalidScenario is returned when a script cannot be loaded or a step cannot be played.
var ErrInvalidScenario = errors.New("invalid scenario")

// StepKind names what a scenario step does.
type StepKind string

const (
	StepConfig     StepKind = "config"
	StepPose       StepKind = "pose"
	StepHold       StepKind = "hold"
	StepExpect     StepKind = "expect"
	StepExpectSide StepKind = "expect_side"
	StepSnap       StepKind = "snap"
	StepRevert     StepKind = "revert"
)

// PoseChange updates the tracked body. Nil fields keep their previous value, except Delta which
// falls back to zero so a head turn lasts only until the next pose step.
type PoseChange struct {
	Head      *mgl32.Vec3
	Waist     *mgl32.Vec3
	LeftHand  *mgl32.Vec3
	RightHand *mgl32.Vec3
	// HeadYaw and HeadPitch are degrees; positive yaw turns right, positive pitch looks up.
	HeadYaw   *float32
	HeadPitch *float32
	Delta     *mgl32.Vec2
}

// Step is one scripted action.
type Step struct {
	Kind      StepKind
	Overrides map[string]any
	Pose      PoseChange
	Seconds   float32
	Camera    behavior.Kind
	Side      behavior.Side
}

// Scenario is a named list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

func (s *Scenario) add(step Step) {
	s.Steps = append(s.Steps, step)
}

// LoadFile loads a scenario script from disk. A scenario without a name is named after the file.
//
// Parameters:
//   - path: location of the Lua script
//
// Returns:
//   - *Scenario: the loaded scenario
//   - error: error wrapping ErrInvalidScenario if the script fails or returns no scenario
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return Load(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// Load runs a scenario script read from r.
//
// Parameters:
//   - r: the Lua source
//   - name: chunk name, also the scenario name when the script leaves it empty
//
// Returns:
//   - *Scenario: the loaded scenario
//   - error: error wrapping ErrInvalidScenario if the script fails or returns no scenario
func Load(r io.Reader, name string) (*Scenario, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadBuffer(state, string(source), name, "t"); err != nil {
		return nil, fmt.Errorf("%w: load lua: %w", ErrInvalidScenario, err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("%w: run lua: %w", ErrInvalidScenario, err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("%w: script must return a Scenario", ErrInvalidScenario)
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scn, ok := ud.(*Scenario)
	if !ok || scn == nil {
		return nil, fmt.Errorf("%w: script returned something other than a Scenario", ErrInvalidScenario)
	}
	if strings.TrimSpace(scn.Name) == "" {
		scn.Name = name
	}
	return scn, nil
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

var scenarioMethods = []lua.RegistryFunction{
	{Name: "config", Function: scenarioConfig},
	{Name: "pose", Function: scenarioPose},
	{Name: "hold", Function: scenarioHold},
	{Name: "expect", Function: scenarioExpect},
	{Name: "expect_side", Function: scenarioExpectSide},
	{Name: "snap", Function: scenarioSnap},
	{Name: "revert", Function: scenarioRevert},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

func scenarioConfig(state *lua.State) int {
	scn := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	scn.add(Step{Kind: StepConfig, Overrides: tableToMap(state, 2)})
	state.PushValue(1)
	return 1
}

func scenarioPose(state *lua.State) int {
	scn := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	var change PoseChange
	change.Head = optionalVec3(state, 2, "head")
	change.Waist = optionalVec3(state, 2, "waist")
	change.LeftHand = optionalVec3(state, 2, "left_hand")
	change.RightHand = optionalVec3(state, 2, "right_hand")
	change.HeadYaw = optionalNumber(state, 2, "head_yaw")
	change.HeadPitch = optionalNumber(state, 2, "head_pitch")
	if v := optionalVector(state, 2, "delta", 2); v != nil {
		change.Delta = &mgl32.Vec2{v[0], v[1]}
	}
	scn.add(Step{Kind: StepPose, Pose: change})
	state.PushValue(1)
	return 1
}

func scenarioHold(state *lua.State) int {
	scn := checkScenario(state)
	seconds := lua.CheckNumber(state, 2)
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		lua.ArgumentError(state, 2, "hold needs a non-negative duration")
	}
	scn.add(Step{Kind: StepHold, Seconds: float32(seconds)})
	state.PushValue(1)
	return 1
}

func scenarioExpect(state *lua.State) int {
	scn := checkScenario(state)
	kind, err := behavior.ParseKind(lua.CheckString(state, 2))
	if err != nil {
		lua.ArgumentError(state, 2, err.Error())
	}
	scn.add(Step{Kind: StepExpect, Camera: kind})
	state.PushValue(1)
	return 1
}

func scenarioExpectSide(state *lua.State) int {
	scn := checkScenario(state)
	side, err := behavior.ParseSide(lua.CheckString(state, 2))
	if err != nil {
		lua.ArgumentError(state, 2, err.Error())
	}
	scn.add(Step{Kind: StepExpectSide, Side: side})
	state.PushValue(1)
	return 1
}

func scenarioSnap(state *lua.State) int {
	scn := checkScenario(state)
	kind, err := behavior.ParseKind(lua.CheckString(state, 2))
	if err == nil && kind == behavior.KindBetween {
		err = errors.New("the between camera cannot be snapped to")
	}
	if err != nil {
		lua.ArgumentError(state, 2, err.Error())
	}
	scn.add(Step{Kind: StepSnap, Camera: kind})
	state.PushValue(1)
	return 1
}

func scenarioRevert(state *lua.State) int {
	scn := checkScenario(state)
	scn.add(Step{Kind: StepRevert})
	state.PushValue(1)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scn, ok := ud.(*Scenario); ok && scn != nil {
		return scn
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func optionalNumber(state *lua.State, index int, field string) *float32 {
	state.Field(index, field)
	defer state.Pop(1)
	if state.IsNil(-1) {
		return nil
	}
	n, ok := state.ToNumber(-1)
	if !ok {
		lua.Errorf(state, "%s must be a number", field)
	}
	v := float32(n)
	return &v
}

func optionalVec3(state *lua.State, index int, field string) *mgl32.Vec3 {
	v := optionalVector(state, index, field, 3)
	if v == nil {
		return nil
	}
	return &mgl32.Vec3{v[0], v[1], v[2]}
}

// optionalVector reads t[field] as an array of exactly size numbers.
func optionalVector(state *lua.State, index int, field string, size int) []float32 {
	state.Field(index, field)
	defer state.Pop(1)
	if state.IsNil(-1) {
		return nil
	}
	if state.TypeOf(-1) != lua.TypeTable || state.RawLength(-1) != size {
		lua.Errorf(state, "%s must be a list of %d numbers", field, size)
	}
	out := make([]float32, size)
	for i := range out {
		state.RawGetInt(-1, i+1)
		n, ok := state.ToNumber(-1)
		state.Pop(1)
		if !ok {
			lua.Errorf(state, "%s must be a list of %d numbers", field, size)
		}
		out[i] = float32(n)
	}
	return out
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
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
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	default:
		return nil
	}
}
