// Package cicd carries the module version.
package cicd

const Version = "0.1.0"
