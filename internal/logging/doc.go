// Package logger provides structured logging for SADET CLI commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags and duplicates every non-debug message into a per-run log file so
// operators can review a run after the fact.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages on the terminal
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always shown regardless of flags.
//
// # Run-Log Sink
//
// The export command attaches a Sink to the logger. Every INFO, WARNING and
// ERROR message is then also written to the run's log file with a timestamp:
//
//	2024-12-08_14:03:21 [SADET - WARNING] Too few matches found ...
//
// The sink truncates an existing log file instead of appending, so reruns
// start from a clean log.
//
// # Usage
//
// Create a logger with the desired verbosity:
//
//	log := Logger{Verbose: verbose, Debug: debug, Sink: sink}
//	log.Infof("Processing %d samples", count)
//
// Commands typically create a logger in their PersistentPreRun and attach
// the sink once the output directory is known.
package logger
