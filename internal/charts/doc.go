// Package charts builds line, histogram, scatter and hexbin charts from
// normalized statement tables and renders them as SVG.
//
// Builders return a Result, which is either a *Chart or a MissingMetric
// placeholder when the requested column is absent. Line, histogram and
// scatter charts are drawn with go-chart; hexbin charts are drawn directly
// so that every cell can carry its own count tooltip.
package charts
