//go:build tools
// +build tools

// Package tpa_lab pins the mockgen binary used by the go:generate directives,
// so the mocks under mocks/ regenerate from a fresh checkout.
package tpa_lab

import (
	_ "go.uber.org/mock/mockgen"
)
