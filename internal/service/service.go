// Package service holds the feedback business rules that sit on top of the
// store: submission defaults and digest assembly.
package service
