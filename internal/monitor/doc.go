// Package monitor contains the check executor and the polling scheduler.
//
// The executor runs a single product check: fetch, parse, extract price,
// classify stock, evaluate the alert condition. Transient network
// failures are retried within the check up to a configured bound;
// extraction failures are terminal because re-fetching an unchanged page
// cannot change its markup.
//
// The scheduler drives the executor on a fixed interval over a frozen
// product list and hands every outcome to the configured sinks. It is
// cancelled through the context passed to Run; cancellation is a clean
// shutdown, never reported as a product failure.
package monitor
