package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The scheduler owns a worker pool draining a task queue and
// periodically enqueues catalog maintenance work.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
