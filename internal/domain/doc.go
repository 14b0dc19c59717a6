// Package domain holds the model types, interfaces, and sentinel errors shared
// by all components. It has no dependencies on other internal packages.
package domain
