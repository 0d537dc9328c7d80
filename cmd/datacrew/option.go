package datacrew

import "io"

// Options is the root command that groups sub-commands.  The struct tags are
// interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Analyze *AnalyzeCmd `command:"analyze" description:"Analyze a dataset with the data analysis crew"`
	Inspect *InspectCmd `command:"inspect" description:"Load a dataset and print its shape, types and sample rows"`
	Version *VersionCmd `command:"version" description:"Print version"`
}

// Init instantiates the sub-command referenced by the first argument so that
// flags.Parse can populate its fields.
func (o *Options) Init(firstArg string, out io.Writer) {
	switch firstArg {
	case "analyze":
		o.Analyze = &AnalyzeCmd{out: out}
	case "inspect":
		o.Inspect = &InspectCmd{out: out}
	case "version":
		o.Version = &VersionCmd{out: out}
	}
}
