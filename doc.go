package declorm

// Package declorm derives a normalized, database-agnostic schema from
// declared Go model structs:
//
// - Explicit registration (Registry.Register) followed by a once-only Build
// - Inheritance flattening via anonymous fields and recursive composite
//   embedding via named fields tagged `orm:"embedded"`
// - Type inference from Go types to column type tags, including enum,
//   flag-set and nullable-pointer handling
// - A stable error model via Issues (dotted field path, code, message)
// - Construction and validator hooks bound to fields at registration time
// - Patch application with modified-flag tracking
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Schema derivation runs exactly once; the resulting SerializedModels is
//   immutable and safe for concurrent reads.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  reg := declorm.NewRegistry()
//  reg.Register(&User{})
//  reg.Register(&Post{})
//  models, err := reg.Build()
//
//  u, err := declorm.New[User](models)
//  iss, err := models.RunValidators(u)
//  err = declorm.ApplyPatch(models, u, declorm.Patch[User]{"name": "bob"})
//
// The JSON written by SerializedModels.WriteModels is the hand-off format
// consumed by migration tooling; SQL generation and query execution live in
// separate layers.
