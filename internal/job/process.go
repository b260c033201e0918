package job

import (
	"coopsched/internal/sched"
)

// Process returns a simulated user-mode program that makes syscalls
// requests, each blocking for sleepTicks, and then calls exit. Trips into
// user mode report a preemption once the CPU's budget is spent.
func Process(syscalls int, sleepTicks uint64, tally *Tally) *sched.UserProcess {
	var p *sched.UserProcess
	p = &sched.UserProcess{
		User: sched.UserContextFunc(func(cx *sched.Context) sched.UserExit {
			if cx.BudgetExpired() {
				return sched.ExitPreempted
			}
			return sched.ExitSyscall
		}),
		Syscall: func(cx *sched.Context) sched.Future {
			if int(p.Syscalls) > syscalls {
				p.Exit()
				if tally != nil {
					tally.Add()
				}
				return nil
			}
			if sleepTicks == 0 {
				return nil
			}
			return sched.SleepFor(sleepTicks)
		},
	}
	return p
}
