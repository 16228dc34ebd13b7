// Package core provides the business logic for schedule import operations.
//
// This package turns department spreadsheets into the normalized schedule
// model of package schedule. It has no knowledge of HTTP or the CLI, so web
// handlers, schedctl and tests all drive it the same way.
//
// # Field Registry
//
// Spreadsheet columns are mapped to the model through field callbacks. Each
// known spreadsheet layout registers a [Schema] at init time:
//
//	core.Register(core.Schema{
//	    Name: "registrar",
//	    Fields: map[string]core.FieldFunc{
//	        "SubjectCode": func(v string, row *core.RowBuilder) {
//	            row.Course.Prefixes = core.SplitPrefixes(v)
//	        },
//	    },
//	})
//
// Lookups resolve over the union of every registered schema, so a single file
// may mix columns from both layouts. Import package core/fields to register
// the built-in layouts.
//
// # Import Flow
//
//  1. [Decode] picks a decoder from the file extension. xlsx workbooks are
//     flattened to CSV text from their first sheet; json files carry
//     conflict constraints instead of courses.
//  2. [ParseCSVContext] applies the registered callbacks to every row and
//     merges the result with schedule.Insert.
//  3. [Service.Import] reduces the parsed schedule into the application
//     state, replacing it or merging into it, then persists a snapshot.
//
// [Service.Preview] runs steps 1 and 2 only and reports the state the import
// would produce. Completed and failed imports are kept in [Service.History].
//
// Imports are serialized by [ImportLimiter]; only the state transition
// itself takes the service lock, so reads stay cheap during an import.
//
// # Error Handling
//
// Errors are wrapped with context and mapped to coded, user-facing messages
// by [MapError]. See error_messages.go for the code reference.
package core
