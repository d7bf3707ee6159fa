// Package otp generates one-time passcodes as fixed-width numeric strings.
//
// Codes are short-lived, single-use secrets handed to a user and verified
// later, so they must come from a cryptographically secure source. The
// generator makes no uniqueness guarantee across users or across time;
// verification is always scoped to a single user.
package otp
