// Package types defines the shared configuration struct and sentinel errors
// for the cicd tool. Commands and internal packages wrap these errors with
// fmt.Errorf and callers classify them with errors.Is.
package types
