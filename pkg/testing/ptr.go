// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package testlib

// Pointer to a copy of v, for optional config fields in tests.
func Ptr[T any](v T) *T {
	return &v
}
