// Package presenter renders analysis results for terminals using
// tablewriter tables and fatih/color highlights. It performs no analysis of
// its own.
package presenter
