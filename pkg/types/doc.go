// Package types defines the Store and Collection interfaces, the document,
// request and outcome types, and the standard errors shared by the launchpad
// storage backends and endpoint layers.
package types
