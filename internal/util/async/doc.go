// Package async provides utilities for concurrent execution with
// deterministic results.
//
// [RunParallel] runs named tasks concurrently and joins their errors.
// [Map] fans a function out over a slice and returns results in input
// order regardless of completion order. [Go] starts a background
// continuation whose outcome can be awaited through a [Future].
package async
