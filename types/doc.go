// Package types provides core types used across the microcrowd engine.
// This package has ZERO dependencies on other engine packages to avoid
// circular imports. All other packages should import types from here.
package types
