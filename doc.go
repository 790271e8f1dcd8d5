// Package niche is the caching and concurrency core behind the Niche review
// and commerce backend. It shields the relational store from read load and
// makes flash-sale writes admissible under heavy concurrency.
//
// Components:
//   - Client[V]: generic read-through cache with three strategies:
//     pass-through with negative caching, mutex-guarded rebuild, and
//     logical-expiry stale-while-revalidate.
//   - lock: distributed lease locks over the shared store.
//   - seq: time-ordered 64-bit id generation.
//   - flashsale: atomic order admission plus queued asynchronous persistence.
//
// All components run against store.Store; store/redis is the production
// implementation and store/memory the in-process one.
//
// Cache keys are laid out as <namespace>:<key> for entries and
// lock:<namespace>:<key> for rebuild locks.
package niche
