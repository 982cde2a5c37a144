// Package staging creates SQL Server staging tables and bulk-loads CSV files
// into them.
//
// Manager owns the transaction boundaries:
//   - CreateStagingTable runs a guarded CREATE TABLE in its own transaction
//   - InsertCSVData loads every file of a batch inside one transaction and
//     commits only after the last file; any failure or interruption rolls
//     the whole batch back
//
// Every identifier is validated against an allow-list before SQL is built
// and emitted bracket-quoted. File paths are emitted as escaped literals
// because BULK INSERT does not accept bound parameters.
package staging
