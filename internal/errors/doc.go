// Package errors defines the error types used throughout the SDK.
//
// All SDK-specific errors implement the MPlayerSDKError interface, which
// allows callers to distinguish SDK errors from other errors using type
// assertions or errors.As.
package errors
