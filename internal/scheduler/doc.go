package scheduler

// Package scheduler implements the multi-account download orchestrator: one
// worker per account session pulling from a shared work queue, gated by the
// global quiet-hours policy and each account's randomized rate limiter.
// Failures are classified, recorded against account health, and retried
// within budget on whichever healthy account frees up first; the shared queue
// is the failover mechanism. The scheduler never crashes on an item or
// account failure; outcomes surface only through statistics, callbacks, and
// the final run report.
