package base

const (
	CanUseTools            string = "can-use-tools"
	CanStream              string = "can-stream"
	CanExecToolsInParallel string = "can-exec-tools-in-parallel"
)
