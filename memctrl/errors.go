package memctrl

import "fmt"

// ConfigError reports a problem discovered while constructing a BwLatMemCtrl:
// a bad path, a bad construction parameter, or a curve file that could not
// be parsed. Construction always fails when a ConfigError is returned.
type ConfigError struct {
	msg string
	err error
}

func (e *ConfigError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("memctrl: config: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("memctrl: config: %s", e.msg)
}

func (e *ConfigError) Unwrap() error { return e.err }

func newConfigError(msg string, err error) *ConfigError {
	return &ConfigError{msg: msg, err: err}
}

// StateError reports an internal invariant violated by runtime state — for
// example, interpolating against a curve bucket that was loaded with zero
// points. It is not necessarily the caller's fault; it means the core's own
// data is inconsistent. Programmer-bug misuse of the API (a non-monotonic
// cycle passed to Access) is not a StateError — it panics instead, per spec
// §6.4/§7, matching the teacher's panic(fmt.Sprintf(...)) convention for
// misuse of its own scheduling/routing interfaces (see window.go).
type StateError struct {
	msg string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("memctrl: state: %s", e.msg)
}

func newStateError(format string, args ...any) *StateError {
	return &StateError{msg: fmt.Sprintf(format, args...)}
}
