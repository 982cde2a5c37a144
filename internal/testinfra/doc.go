// Package testinfra starts the SQL Server container used by integration tests.
package testinfra
