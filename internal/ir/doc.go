// Package ir provides the intermediate representation shared by the
// chanproto front ends, validator and emitters.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Operation and parameter order is significant everywhere
//   - Type expressions are Go source strings, normalized by the front ends
//   - Positions never contribute to a fingerprint
//   - All JSON tags use snake_case
package ir
