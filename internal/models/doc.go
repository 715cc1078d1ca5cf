// Package models defines domain entities and persistence interfaces for the afterthoughts journaling client.
//
// The package contains two categories of types:
//
// 1. Remote rows: structs mirroring the hosted collaborator's tables
//   - [Diary] : A journal owned by an account
//   - [Entry] : A dated entry inside a diary, draft or published
//   - [Session] : The authenticated account session and its token
//
// 2. Forms: client-side validated input
//   - [SignupForm] : Signup fields with the password rule set
//   - [PasswordValidation] : Per-rule results for inline display
//
// Locally cached rows implement the Model interface providing ID access, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for cache access.
package models
