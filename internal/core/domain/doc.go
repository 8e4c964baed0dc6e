// Package domain contains the core business entities for askdoc.
// These types have no dependencies on infrastructure or frameworks.
package domain
