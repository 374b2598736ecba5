// Package session provides the registry of connected sessions for a room.
//
// The session package implements:
//   - Thread-safe add and remove of sessions
//   - Snapshot iteration over open sessions
//   - Broadcast with per-session failure isolation
//
// Core Types:
//
// Session is the outbound side of one connection, implemented by the
// websocket transport. Registry is the set of sessions a room broadcasts to.
//
// Concurrency:
//
// Add and Remove may run concurrently with Broadcast. Broadcast works on a
// snapshot taken under a read lock, so it may miss a session added while it
// runs or include one removed while it runs. Sends happen outside the lock.
//
// Usage:
//
//	registry := session.NewRegistry(log)
//	registry.Add(client)
//	defer registry.Remove(client)
//
//	registry.Broadcast(msg.Encode())
//
// Closed sessions are skipped during broadcast but are never removed by the
// registry itself; the connection that owns a session removes it.
package session
