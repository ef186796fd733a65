package config

// Config file names searched by FindConfig, in order.
var ConfigFileNames = []string{"tiervm.yaml", "tiervm.yml"}

// Interpreted tier implementations.
const (
	InterpreterAbstract = "abstract"
	InterpreterTree     = "tree"
)

// Defaults applied to unset fields.
const (
	DefaultCompileThreshold     = 2
	DefaultMaxCompileAttempts   = 3
	DefaultRecompileAfterDeopts = 8
	DefaultInterpreter          = InterpreterAbstract
)
