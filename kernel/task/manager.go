// Package task implements the round-robin task manager that the timer
// interrupt invokes to pick the next task to run.
package task

import (
	"picoos/kernel"
	"picoos/kernel/sync"
)

// MaxTasks is the capacity of the task table.
const MaxTasks = 16

var (
	// ErrTaskTableFull is returned when registering more than MaxTasks tasks.
	ErrTaskTableFull = &kernel.Error{Module: "task", Message: "task table is full"}

	// ErrInvalidStackPointer is returned when registering a task with a nil
	// stack pointer.
	ErrInvalidStackPointer = &kernel.Error{Module: "task", Message: "invalid stack pointer"}

	// ErrStackTooSmall is returned by Spawn when the supplied stack cannot
	// hold the initial register frame.
	ErrStackTooSmall = &kernel.Error{Module: "task", Message: "stack too small for initial frame"}

	// ErrInvalidEntryPoint is returned by Spawn when entry is 0.
	ErrInvalidEntryPoint = &kernel.Error{Module: "task", Message: "invalid entry point"}

	// ErrNoSuchTask is returned when referring to an unregistered task.
	ErrNoSuchTask = &kernel.Error{Module: "task", Message: "no such task"}

	// ErrInvalidState is returned by SetState for states that only the
	// scheduler may assign.
	ErrInvalidState = &kernel.Error{Module: "task", Message: "state cannot be set explicitly"}

	// Default is the task manager driven by the timer interrupt.
	Default Manager
)

// State describes the lifecycle state of a task.
type State uint8

const (
	// NotStarted tasks have an initial frame prepared but have never run.
	NotStarted State = iota

	// Runnable tasks are waiting for their next time slice.
	Runnable

	// Running is the state of the single task that currently owns the CPU.
	Running

	// Blocked tasks are skipped by the scheduler until they are marked
	// Runnable again.
	Blocked
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Runnable:
		return "runnable"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Task is a schedulable unit of execution.
type Task struct {
	// ID is the index of the task in the task table.
	ID int

	// SP is the saved stack pointer. It is only meaningful while the task
	// is not running.
	SP StackPointer

	State State
}

// Manager owns the task table and the index of the running task.
//
// Schedule runs in interrupt context with interrupts masked, so on the kernel
// target nothing can race with it. The spinlock makes that exclusion explicit
// and is what serialises callers on hosted builds. Schedule never spins on
// it: a tick that preempts a task while it holds the lock resumes that task.
type Manager struct {
	lock sync.Spinlock

	tasks [MaxTasks]Task
	count int

	// current is only valid once started is set. Before the first
	// Schedule call the CPU runs the boot context which is not a task.
	current int
	started bool

	// blockOnPreempt is set when the running task has been marked
	// Blocked. The task stays Running until Schedule finds another task
	// to switch to.
	blockOnPreempt bool
}

// Register adds a task whose initial CPUState frame is addressed by sp.
func (m *Manager) Register(sp StackPointer) (*Task, *kernel.Error) {
	if sp == 0 {
		return nil, ErrInvalidStackPointer
	}

	m.lock.Acquire()
	defer m.lock.Release()

	if m.count == MaxTasks {
		return nil, ErrTaskTableFull
	}

	t := &m.tasks[m.count]
	*t = Task{ID: m.count, SP: sp, State: NotStarted}
	m.count++

	return t, nil
}

// Spawn prepares an initial register frame at the top of stack that resumes
// execution at entry with interrupts enabled, and registers it as a new task.
// The stack must remain allocated for as long as the task exists.
func (m *Manager) Spawn(stack []byte, entry uintptr) (*Task, *kernel.Error) {
	if entry == 0 {
		return nil, ErrInvalidEntryPoint
	}

	sp := prepareStack(stack, entry)
	if sp == 0 {
		return nil, ErrStackTooSmall
	}

	return m.Register(sp)
}

// Schedule saves sp as the stack pointer of the running task and returns the
// saved stack pointer of the next task in round-robin order. Blocked tasks are
// skipped; if no other task can run, the running task is resumed. With an
// empty task table Schedule returns sp.
//
// On the first call sp belongs to the boot context, which is dropped: from
// then on the CPU only runs registered tasks.
//
// If the lock is held by the interrupted task, Schedule returns sp without
// switching.
//go:nosplit
func (m *Manager) Schedule(sp StackPointer) StackPointer {
	if !m.lock.TryToAcquire() {
		return sp
	}

	if m.count == 0 {
		m.lock.Release()
		return sp
	}

	start := 0
	if m.started {
		cur := &m.tasks[m.current]
		cur.SP = sp
		if cur.State == Running {
			cur.State = Runnable
			if m.blockOnPreempt {
				cur.State = Blocked
			}
		}
		start = m.current + 1
	}

	next := -1
	for i := 0; i < m.count; i++ {
		idx := (start + i) % m.count
		if state := m.tasks[idx].State; state == Runnable || state == NotStarted {
			next = idx
			break
		}
	}

	if next == -1 {
		// Nothing else can run; the interrupted context keeps the CPU.
		if m.started {
			m.tasks[m.current].State = Running
		}
		m.lock.Release()
		return sp
	}

	m.tasks[next].State = Running
	m.current = next
	m.started = true
	m.blockOnPreempt = false
	nextSP := m.tasks[next].SP

	m.lock.Release()
	return nextSP
}

// Current returns the ID of the running task. It returns false while the boot
// context is running.
func (m *Manager) Current() (int, bool) {
	m.lock.Acquire()
	defer m.lock.Release()

	return m.current, m.started
}

// Len returns the number of registered tasks.
func (m *Manager) Len() int {
	m.lock.Acquire()
	defer m.lock.Release()

	return m.count
}

// Task returns a snapshot of the task with the given ID.
func (m *Manager) Task(id int) (Task, *kernel.Error) {
	m.lock.Acquire()
	defer m.lock.Release()

	if id < 0 || id >= m.count {
		return Task{}, ErrNoSuchTask
	}

	return m.tasks[id], nil
}

// SetState marks a task as Blocked or Runnable. The running task remains
// Running after being blocked until a timer tick switches to another task;
// from then on it is skipped until it is marked Runnable.
func (m *Manager) SetState(id int, state State) *kernel.Error {
	if state != Blocked && state != Runnable {
		return ErrInvalidState
	}

	m.lock.Acquire()
	defer m.lock.Release()

	if id < 0 || id >= m.count {
		return ErrNoSuchTask
	}

	t := &m.tasks[id]
	switch {
	case t.State == Running:
		m.blockOnPreempt = state == Blocked
	case state == Runnable && t.State == Blocked:
		t.State = Runnable
	case state == Blocked:
		t.State = Blocked
	}

	return nil
}

// Reset removes all tasks and returns the manager to the boot context.
func (m *Manager) Reset() {
	m.lock.Acquire()
	m.tasks = [MaxTasks]Task{}
	m.count = 0
	m.current = 0
	m.started = false
	m.blockOnPreempt = false
	m.lock.Release()
}
