// Package shutdown runs cleanup hooks when the process is asked to stop.
//
// A Handler collects named hooks and runs them once, newest first, under a
// shared timeout. Wait triggers the run on SIGINT, SIGTERM or when its
// context ends:
//
//	h := shutdown.NewHandler(5*time.Second, logger)
//	h.OnShutdown("flush", store.Flush)
//	err := h.Wait(ctx)
package shutdown
