// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. OfferExpiryJob - Runs every second to expire outstanding offers whose
// response deadline has passed and move the dispatch chain to the next courier
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(uowFactory, expireOfferHandler, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The sweep uses the cron expression "* * * * * *", running every second. The
// per-offer in-process timers normally fire first; the sweep catches offers
// whose timers were lost to a process restart.
//
// # Error Handling
//
// Offers resolved concurrently by an accept or decline are skipped silently.
// Any other sweep failure is logged and retried on the next tick.
package jobs
