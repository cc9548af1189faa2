package gallery

// Package gallery owns the search-and-fetch orchestration: the session
// controller that turns a query into a rate-limited sequence of catalog
// fetches, the process-lifetime artwork cache, and detail selection. The
// UI drives it through Search/Reset/SelectItem/CloseDetails and observes
// it through the update callback.
