// Package services holds the error taxonomy and context helpers shared by
// the external collaborator clients under services/ and the stage handlers
// that invoke them.
package services
