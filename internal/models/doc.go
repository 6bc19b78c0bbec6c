// Package models defines the core domain types for splitledger.
//
// # Ownership
//
// The group roster (Group, Member) and the shared transactions are owned by
// collaborating subsystems; the settlement core treats them as immutable
// inputs for a given computation. The only record whose lifecycle lives in
// this service is SettlementRequest.
//
// # Money
//
// All amounts are fixed-point integers in minor units (cents). Balances are
// derived values and are never persisted as a source of truth; they are
// recomputed from scratch on every read.
package models
