/*
Package stripe provides a fixed set of mutexes indexed by key hash.

A Set distributes keys across a small number of locks so that operations on
the same key are always serialized while operations on different keys usually
proceed in parallel. Memory stays constant no matter how many distinct keys
pass through.

# Basic Usage

Create a Set and lock the stripe for a key around the critical section:

	locks := stripe.New(8)

	mu := locks.For("users.db")
	mu.Lock()
	// ... per-key critical section ...
	mu.Unlock()

Equal keys always map to the same mutex, so two goroutines working on the
same key exclude each other. Two distinct keys may hash to the same stripe
and contend; that only costs throughput, never correctness.

# Whole-Set Exclusion

LockAll acquires every stripe and returns the release function, which is
useful for teardown paths that must not race with any per-key operation:

	release := locks.LockAll()
	defer release()
	// ... no key-level operation can make progress here ...
*/
package stripe
