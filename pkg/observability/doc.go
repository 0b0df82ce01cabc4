/*
Package observability provides tools for monitoring boards.

Everything here is expressed as domain.LifecycleHooks: Prometheus metrics, structured
logging of board events, and ChainHooks to combine several hook sets into one.
*/
package observability
