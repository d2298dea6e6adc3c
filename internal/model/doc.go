package model

// Package model defines domain data structures shared across the app: content
// items, account reports, status enums, and the error taxonomy used for
// failure classification. Structures are designed for explicit state
// transitions and direct serialization into the final run report.
