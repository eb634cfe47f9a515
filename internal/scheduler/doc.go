// Package scheduler реализует дообогащение (backfill) по расписанию.
//
// Scheduler периодически находит записи, которые ещё не обогащены
// (вакансии без skills, кандидаты без resume_summary), и публикует
// для них enrich.requested. Запросы выполняет worker.
//
// Структура:
//   - scheduler.go — Tick, Run, Target
//   - cron.go      — парсинг cron-выражений, адаптер логгера для robfig/cron
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Targets:   scheduler.DefaultTargets(jobRepo, candidateRepo),
//	    Requester: publisher,
//	    Leader:    repo.NewAdvisoryLock(pool, repo.SchedulerLockKey),
//	    Logger:    logger,
//	})
//
//	// Блокируется до отмены ctx
//	sched.Run(ctx, cfg.Scheduler.Cron)
//
// Leader Election:
//
// Тик выполняется только владельцем pg_try_advisory_lock; остальные
// экземпляры пропускают тики, пока лидер жив.
package scheduler
