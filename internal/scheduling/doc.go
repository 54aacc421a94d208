// Package scheduling implements the lesson placement engine: interval
// overlap, working-hour and holiday policies, availability and conflict
// checks, recurring-series expansion and calendar grid generation.
//
// Every function in this package is a pure computation over its inputs. The
// package performs no I/O, holds no state and reaches for no ambient
// configuration; callers thread the lesson snapshot and policy settings
// through explicitly. All times are naive local wall-clock values.
package scheduling
