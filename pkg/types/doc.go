// Package types defines the Store interface, the Cafe record and its partial
// input form, the export document, and the standard errors for CafeMemo.
//
// The query helpers in this package (FilterCafes, SortCafes, GroupByArea) are
// pure transformations over a List snapshot; they never touch storage.
package types
