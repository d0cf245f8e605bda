// Package services defines the shared error taxonomy used across pipeline
// stages and external collaborator boundaries.
package services
