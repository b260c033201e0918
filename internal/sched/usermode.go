package sched

// UserExit is the outcome of one trip into unprivileged execution.
type UserExit uint8

const (
	ExitSyscall   UserExit = iota // a request needs kernel handling
	ExitPreempted                 // this CPU was about to be preempted
	ExitFault                     // the unprivileged code faulted
)

func (x UserExit) String() string {
	switch x {
	case ExitSyscall:
		return "Syscall"
	case ExitPreempted:
		return "Preempted"
	case ExitFault:
		return "Fault"
	default:
		return "Unknown"
	}
}

// UserContext is the opaque privileged/unprivileged switch. Enter runs the
// user context until it traps back and reports why. The executor treats it
// as an ordinary synchronous call.
type UserContext interface {
	Enter(cx *Context) UserExit
}

// UserContextFunc adapts a function to UserContext.
type UserContextFunc func(cx *Context) UserExit

func (f UserContextFunc) Enter(cx *Context) UserExit { return f(cx) }

// SyscallHandler services a trap. It returns the work that must finish
// before the process re-enters user mode, or nil when the call completed
// inline.
type SyscallHandler func(cx *Context) Future

// UserProcess is a task body that drives a UserContext. After a preemption
// exit, or once the CPU's budget is spent, it yields to the executor instead
// of re-entering user mode.
type UserProcess struct {
	User    UserContext
	Syscall SyscallHandler
	OnFault func(cx *Context)

	Entries     uint64
	Syscalls    uint64
	Preemptions uint64
	Faulted     bool

	blocked Future
	exited  bool
}

// Exit is called by a syscall handler servicing the exit call. The process
// completes once the handler's pending work, if any, is done.
func (p *UserProcess) Exit() { p.exited = true }

// Exited reports whether the process left through Exit rather than a fault.
func (p *UserProcess) Exited() bool { return p.exited }

func (p *UserProcess) Poll(cx *Context) PollResult {
	for {
		if p.blocked != nil {
			if p.blocked.Poll(cx) == Pending {
				return Pending
			}
			p.blocked = nil
		}
		if p.exited {
			return Ready
		}
		if cx.BudgetExpired() {
			cx.Wake()
			return Pending
		}

		p.Entries++
		switch p.User.Enter(cx) {
		case ExitPreempted:
			p.Preemptions++
			cx.Wake()
			return Pending
		case ExitSyscall:
			p.Syscalls++
			if p.Syscall != nil {
				p.blocked = p.Syscall(cx)
			}
		default:
			p.Faulted = true
			if p.OnFault != nil {
				p.OnFault(cx)
			}
			return Ready
		}
	}
}
