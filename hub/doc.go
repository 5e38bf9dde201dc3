// Package hub models the feature-hub wire protocol: connection descriptors,
// space metadata, and construction of fully-resolved HTTP requests against
// the hub's space and feature endpoints.
package hub
