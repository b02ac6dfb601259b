// Package project materializes wide-table rows from tracked observations.
// A row always covers every registered column; missing observations keep the
// column's sentinel, and destroyed entities surface only through their
// terminal state column.
package project
