package engine

// Reason classifies why a foreground operation did not succeed. Operations
// report failure through these results instead of errors: none of them is
// fatal, and callers decide what to do next.
type Reason string

const (
	// ReasonAlreadyRunning: launch found a live worker already bound to
	// the profile.
	ReasonAlreadyRunning Reason = "already_running"
	// ReasonLaunchFailed: the OS refused to start the launcher.
	ReasonLaunchFailed Reason = "launch_failed"
	// ReasonNotFound: stop could not resolve any process for the profile.
	ReasonNotFound Reason = "not_found"
	// ReasonKillTimedOut: the signaled process was still alive after the
	// confirmation window. The binding is kept so a retry can target it.
	ReasonKillTimedOut Reason = "kill_timed_out"
)

// LaunchResult reports the outcome of a launch request. On success,
// ProcessID is the launcher's pid, surfaced for information only; the real
// worker is not bound yet and WorkerPending is true. On an AlreadyRunning
// failure, ProcessID is the existing worker pid.
type LaunchResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Reason        Reason `json:"reason,omitempty"`
	ProcessID     int32  `json:"process_id,omitempty"`
	WorkerPending bool   `json:"worker_pending"`
}

// StopResult reports the outcome of a stop request. PID is the process that
// was (or failed to be) terminated, when one was resolved.
type StopResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  Reason `json:"reason,omitempty"`
	PID     int32  `json:"pid,omitempty"`
}
