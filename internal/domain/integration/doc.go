// Package integration contains the cross-system identity mapping domain:
// the correspondence between entities keyed by the local POS system and the
// same entities keyed by the external CRM system.
package integration
