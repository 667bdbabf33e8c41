package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/obelisc/obelisc/vm"
)

// StepMatcher decides whether an action (logging, snapshotting, stopping)
// fires before the next step of the given state.
type StepMatcher func(st *vm.VMState) bool

// StepMatcherFlag is a CLI flag value: "never", "=123" (at cycle 123) or
// "%123" (every 123 cycles).
type StepMatcherFlag struct {
	repr    string
	matcher StepMatcher
}

func MustStepMatcherFlag(pattern string) *StepMatcherFlag {
	out := new(StepMatcherFlag)
	if err := out.Set(pattern); err != nil {
		panic(err)
	}
	return out
}

func (m *StepMatcherFlag) Set(value string) error {
	m.repr = value
	if value == "" || value == "never" {
		m.matcher = func(st *vm.VMState) bool {
			return false
		}
	} else if strings.HasPrefix(value, "=") {
		when, err := strconv.ParseUint(value[1:], 0, 64)
		if err != nil {
			return fmt.Errorf("failed to parse step number: %w", err)
		}
		m.matcher = func(st *vm.VMState) bool {
			return st.Cycles == when
		}
	} else if strings.HasPrefix(value, "%") {
		when, err := strconv.ParseUint(value[1:], 0, 64)
		if err != nil {
			return fmt.Errorf("failed to parse step interval number: %w", err)
		}
		if when == 0 {
			return fmt.Errorf("step interval must not be zero")
		}
		m.matcher = func(st *vm.VMState) bool {
			return st.Cycles%when == 0
		}
	} else {
		return fmt.Errorf("unrecognized step matcher: %q", value)
	}
	return nil
}

func (m *StepMatcherFlag) String() string {
	return m.repr
}

func (m *StepMatcherFlag) Matcher() StepMatcher {
	if m.matcher == nil { // Set(...) may not have been called if the flag was not set to any value
		return func(st *vm.VMState) bool {
			return false
		}
	}
	return m.matcher
}

func (m *StepMatcherFlag) Clone() any {
	var out StepMatcherFlag
	if err := out.Set(m.repr); err != nil {
		panic(fmt.Errorf("invalid repr: %w", err)) // repr was validated before, so this should never happen
	}
	return &out
}
