// Package metric provides the Prometheus metrics recorded by SaveVault.
//
// Metrics:
//
//   - savevault_operations_total{op,result}: facade calls by outcome
//   - savevault_operation_duration_seconds{op}: facade call latency
//   - savevault_autosave_ticks_total: auto-save loop iterations
//   - savevault_autosave_saves_total: saves issued by the auto-save loop
//   - savevault_backups_total: backups taken before an overwrite
//
// A nil *Registry is valid and records nothing.
package metric
