package troubleshoot

// signalExitCodes maps container exit codes of the form 128+n to the name of signal n.
var signalExitCodes = map[int32]string{
	129: "SIGHUP",
	130: "SIGINT",
	131: "SIGQUIT",
	132: "SIGILL",
	133: "SIGTRAP",
	134: "SIGABRT",
	135: "SIGBUS",
	136: "SIGFPE",
	137: "SIGKILL",
	138: "SIGUSR1",
	139: "SIGSEGV",
	140: "SIGUSR2",
	141: "SIGPIPE",
	142: "SIGALRM",
	143: "SIGTERM",
	159: "SIGSYS",
}

// SignalName returns the name of the signal that terminated a process with the
// given exit code, and false if the code does not correspond to a known signal.
func SignalName(exitCode int32) (string, bool) {
	name, ok := signalExitCodes[exitCode]
	return name, ok
}
