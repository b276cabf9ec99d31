// Package domain contains the core business entities and value types.
// It has no dependencies on adapters or infrastructure.
package domain
