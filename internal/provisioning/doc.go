// Package provisioning implements the dataset provisioning saga.
//
// Provisioning a dataset creates three coupled resources in three external
// systems, in a fixed order: a table in the table service, a publicly shared
// data-entry form scoped to that table, and a dashboard with one chart per
// numeric field. Only after all three exist is the local template record
// written; a portal visualization page is then generated best-effort.
//
// Progress is encoded as a forward-only sequence of typed states
// (Unstarted, TableReady, FormReady, DashboardReady). Each transition
// consumes the prior state and either produces the next one or a StageError
// bundling the last valid state, so the orchestrator always knows exactly
// which remote resources exist at failure time and can compensate without
// re-querying.
//
// Compensation is deliberately best-effort and asymmetric: on form- or
// dashboard-stage failure the stage-1 table is deleted (every later resource
// depends on it), while secondary artifacts may be orphaned. No compensation
// runs when the final local write fails.
package provisioning
