/*
Package session hosts boards on a multi-threaded host.

A Board is single-threaded by contract. A Driver owns one Board on its own goroutine,
ticks it from a wall clock and runs every other access as a command on that goroutine.
A Manager keeps several drivers keyed by board ID for servers that expose many boards.
*/
package session
