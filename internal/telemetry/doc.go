// Package telemetry times solver stages over a rolling window of ticks.
//
// [PerfCollector] implements mpm.StageHook; [PerfStats] logs through slog
// and flattens to a gocsv record for perf.csv.
package telemetry
