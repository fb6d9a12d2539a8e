package model

import (
	"sort"
	"strconv"
)

// MaxFunctionNumber is the highest valid function number on a decoder.
const MaxFunctionNumber = 127

// SpeedDisplay selects how a locomotive's speed is shown.
type SpeedDisplay int

const (
	SpeedDisplayKMH   SpeedDisplay = 0 // kilometers per hour
	SpeedDisplaySteps SpeedDisplay = 1 // regulation steps
	SpeedDisplayMPH   SpeedDisplay = 2 // miles per hour
)

// RailVehicleType discriminates vehicle rows in the database.
type RailVehicleType int

const (
	VehicleLocomotive RailVehicleType = 0
	VehicleWagon      RailVehicleType = 1
	VehicleAccessory  RailVehicleType = 2
)

// RegulationStep is the decoder speed-step mode, stored as an enum index.
type RegulationStep int

const (
	RegulationSteps128 RegulationStep = 0
	RegulationSteps28  RegulationStep = 1
	RegulationSteps14  RegulationStep = 2
)

// ButtonType describes how a function's control behaves.
type ButtonType int

const (
	ButtonSwitch ButtonType = 0
	ButtonPush   ButtonType = 1
	ButtonTime   ButtonType = 2
)

// String returns a human-readable button type name.
func (b ButtonType) String() string {
	switch b {
	case ButtonSwitch:
		return "switch"
	case ButtonPush:
		return "push-button"
	case ButtonTime:
		return "time button"
	default:
		return "type_" + strconv.Itoa(int(b))
	}
}

// FunctionInfo describes one programmable locomotive function.
type FunctionInfo struct {
	Number     int
	ImageName  string // icon reference, matched against archive members by name
	Shortcut   string
	Position   int    // display and persisted row ordering
	Time       string // decimal seconds; "0" means unset
	ButtonType ButtonType
	Active     bool
}

// NewFunctionInfo returns a function with the defaults a fresh decoder
// function has: active, instant, plain switch.
func NewFunctionInfo(number int) *FunctionInfo {
	return &FunctionInfo{
		Number: number,
		Time:   "0",
		Active: true,
	}
}

// TimedSeconds parses the timed duration. The second return is false when the
// duration is unset or the function is not a time button.
func (f *FunctionInfo) TimedSeconds() (float64, bool) {
	if f.ButtonType != ButtonTime || f.Time == "" || f.Time == "0" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(f.Time, 64)
	if err != nil {
		return 0, false
	}
	return secs, true
}

// Locomotive represents one model locomotive.
//
// PersistedID is the identity token binding the locomotive to a database row;
// it is set by the reader, refreshed by the writer, and zero for locomotives
// created fresh in memory.
type Locomotive struct {
	PersistedID int64

	Address     int
	Name        string
	FullName    string
	Description string
	Railway     string

	ArticleNumber string
	DecoderType   string
	BuildYear     string

	// Kept as opaque strings: the source data is inconsistently formatted.
	BufferLength      string
	ModelBufferLength string
	ServiceWeight     string
	ModelWeight       string
	RMin              string

	IP         string
	DriversCab string

	Active         bool
	Speed          int  // maximum speed
	Direction      bool // true = forward
	SpeedDisplay   SpeedDisplay
	VehicleType    RailVehicleType
	RegulationStep RegulationStep

	Categories   []string // ordered category names
	Crane        bool
	InStockSince string
	ImageName    string

	// Functions maps function number to its full description. It is the
	// single source of truth; the legacy boolean view is derived from it.
	Functions map[int]*FunctionInfo
}

// NewLocomotive returns a locomotive with the model defaults: active, facing
// forward, no functions.
func NewLocomotive() *Locomotive {
	return &Locomotive{
		Active:    true,
		Direction: true,
		Functions: make(map[int]*FunctionInfo),
	}
}

// SetFunction adds or replaces a function, keyed by its number.
func (l *Locomotive) SetFunction(fn *FunctionInfo) error {
	if fn == nil {
		return ErrNilFunction
	}
	if fn.Number < 0 || fn.Number > MaxFunctionNumber {
		return ErrFunctionNumberRange
	}
	if l.Functions == nil {
		l.Functions = make(map[int]*FunctionInfo)
	}
	l.Functions[fn.Number] = fn
	return nil
}

// RemoveFunction deletes the function with the given number, if present.
func (l *Locomotive) RemoveFunction(number int) {
	delete(l.Functions, number)
}

// ActiveFunctions returns the legacy number-to-active view derived from
// Functions.
func (l *Locomotive) ActiveFunctions() map[int]bool {
	active := make(map[int]bool, len(l.Functions))
	for num, fn := range l.Functions {
		active[num] = fn.Active
	}
	return active
}

// FunctionNumbers returns the function numbers in ascending order.
func (l *Locomotive) FunctionNumbers() []int {
	nums := make([]int, 0, len(l.Functions))
	for num := range l.Functions {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}
