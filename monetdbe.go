// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package monetdbe drives MonetDB/e, the embedded MonetDB engine, through
// its C API. libmonetdbe is loaded at runtime, so cgo is not required.
//
// The engine permits one open database per process. A Manager owns that
// connection and hands it to whichever Session is used; switching sessions
// closes one connection and opens the next. Results are decoded one cell at
// a time with Extract, or a column at a time with Result.ExtractAll and
// Result.Arrow. Session.Append loads typed host columns straight into a
// table without going through SQL.
//
// Sessions, results and statements must not be used from more than one
// goroutine at a time.
package monetdbe
