// Package app is the analytics facade, the only component that wires the
// store, classifier gateway, harvester, and aggregator together. API handlers
// route every operation through here.
package app
