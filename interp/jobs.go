package interp

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// JobState is a job's lifecycle state, polled asynchronously per
// spec.md §4.10 ("polls job state transitions asynchronously").
type JobState int

const (
	JobRunning JobState = iota
	JobStopped
	JobDone
)

func (s JobState) String() string {
	switch s {
	case JobRunning:
		return "Running"
	case JobStopped:
		return "Stopped"
	case JobDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Job is one tracked background or stopped pipeline, grounded on
// original_source/shell/src/jobs.rs (the teacher has no job manager:
// mvdan.cc/sh is non-interactive and runs pipelines synchronously, so
// this whole file is new).
type Job struct {
	ID      int
	UUID    uuid.UUID // stable identity that outlives Remove, unlike the small per-table ID
	PGID    int
	Command string // source text, for `jobs` output
	State   JobState
	Exit    ExitCode

	process *os.Process
}

// JobManager is the C10 component.
type JobManager struct {
	mu      sync.Mutex
	jobs    []*Job
	nextID  int
	current int // job ID, 0 if none
	prev    int // job ID, 0 if none
}

func NewJobManager() *JobManager { return &JobManager{nextID: 1} }

// Clone returns an independent job table seeded with a snapshot of jm's
// current jobs, for spec.md §5/§9's subshell semantics: a job started
// or reaped inside the clone must not be visible to jm, and vice versa.
// Cloned Job values are shallow copies (the underlying *os.Process, if
// any, is still the same live OS process — only the bookkeeping table
// itself is duplicated).
func (jm *JobManager) Clone() *JobManager {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	out := &JobManager{nextID: jm.nextID, current: jm.current, prev: jm.prev}
	out.jobs = make([]*Job, len(jm.jobs))
	for i, j := range jm.jobs {
		copyJ := *j
		out.jobs[i] = &copyJ
	}
	return out
}

// Add registers a newly spawned pipeline and updates current/previous
// so that at most one job holds each marker, per spec.md §4.10.
func (jm *JobManager) Add(pgid int, command string, proc *os.Process) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	j := &Job{ID: jm.nextID, UUID: uuid.New(), PGID: pgid, Command: command, State: JobRunning, process: proc}
	jm.nextID++
	jm.jobs = append(jm.jobs, j)
	jm.prev = jm.current
	jm.current = j.ID
	return j
}

// Remove drops a job once it has been reaped and reported (e.g. after
// `wait` or a `jobs` notification), reassigning current/previous if
// either pointed at it.
func (jm *JobManager) Remove(id int) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	for i, j := range jm.jobs {
		if j.ID == id {
			jm.jobs = append(jm.jobs[:i], jm.jobs[i+1:]...)
			break
		}
	}
	if jm.current == id {
		jm.current = jm.prev
		jm.prev = 0
	} else if jm.prev == id {
		jm.prev = 0
	}
}

// All returns a snapshot of tracked jobs, ordered by ID.
func (jm *JobManager) All() []*Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	out := make([]*Job, len(jm.jobs))
	copy(out, jm.jobs)
	return out
}

// SetState updates a job's lifecycle state, called when a coproc body
// finishes and by the fg/bg/wait built-ins.
func (jm *JobManager) SetState(id int, state JobState, code ExitCode) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	for _, j := range jm.jobs {
		if j.ID == id {
			j.State = state
			j.Exit = code
			return
		}
	}
}

// Resolve parses a job spec per spec.md §4.10: `%%`/`%+` (current),
// `%-` (previous), `%N` (by id), `%prefix` (unique command prefix
// match), `%?substring` (unique substring match).
func (jm *JobManager) Resolve(spec string) (*Job, error) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	spec = strings.TrimPrefix(spec, "%")
	switch {
	case spec == "" || spec == "%" || spec == "+":
		return jm.findID(jm.current)
	case spec == "-":
		return jm.findID(jm.prev)
	}
	if n, err := strconv.Atoi(spec); err == nil {
		return jm.findID(n)
	}
	if strings.HasPrefix(spec, "?") {
		needle := spec[1:]
		var match *Job
		for _, j := range jm.jobs {
			if strings.Contains(j.Command, needle) {
				if match != nil {
					return nil, fmt.Errorf("interp: ambiguous job spec %%?%s", needle)
				}
				match = j
			}
		}
		if match == nil {
			return nil, fmt.Errorf("interp: no job matches %%?%s", needle)
		}
		return match, nil
	}
	var match *Job
	for _, j := range jm.jobs {
		if strings.HasPrefix(j.Command, spec) {
			if match != nil {
				return nil, fmt.Errorf("interp: ambiguous job spec %%%s", spec)
			}
			match = j
		}
	}
	if match == nil {
		return nil, fmt.Errorf("interp: no such job %%%s", spec)
	}
	return match, nil
}

// Signal delivers sig to the job's backing process only, not to a
// process group; it fails when the job has no process.
func (j *Job) Signal(sig os.Signal) error {
	if j.process == nil {
		return fmt.Errorf("interp: job %%%d has no backing process", j.ID)
	}
	return j.process.Signal(sig)
}

// Wait blocks until the job's process exits, used by the `wait`
// built-in; it does not itself update the job's tracked State — the
// caller is expected to call SetState once it has the resulting code.
func (j *Job) Wait() (*os.ProcessState, error) {
	if j.process == nil {
		return nil, fmt.Errorf("interp: job %%%d has no backing process", j.ID)
	}
	return j.process.Wait()
}

// PID returns the backing process's PID, or 0 if the job has none
// (e.g. a job created purely for bookkeeping in tests).
func (j *Job) PID() int {
	if j.process == nil {
		return 0
	}
	return j.process.Pid
}

// LastBackgroundPID returns the PID backing the current job, i.e.
// spec.md §4.4's `$!`, or 0 if no job has been started yet.
func (jm *JobManager) LastBackgroundPID() int {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	for _, j := range jm.jobs {
		if j.ID == jm.current && j.process != nil {
			return j.process.Pid
		}
	}
	return 0
}

// ByUUID finds a job by its stable identity, usable once the job's
// caller-visible small ID is no longer known (e.g. after a Remove).
func (jm *JobManager) ByUUID(id uuid.UUID) (*Job, error) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	for _, j := range jm.jobs {
		if j.UUID == id {
			return j, nil
		}
	}
	return nil, fmt.Errorf("interp: no job with uuid %s", id)
}

func (jm *JobManager) findID(id int) (*Job, error) {
	if id == 0 {
		return nil, fmt.Errorf("interp: no current job")
	}
	for _, j := range jm.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, fmt.Errorf("interp: no such job %%%d", id)
}
