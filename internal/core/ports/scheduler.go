package ports

type SchedulerService interface {
	Start()
	Stop()
	ScheduleRecurring(intervalSecs uint32, task func()) error
	CancelRecurring()
}
