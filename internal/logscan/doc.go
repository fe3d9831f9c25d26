// Package logscan scans LocalApp log trees for inherited error messages.
//
// The LocalApp pipeline can finish "successfully" while individual steps
// logged errors. Before exporting a run, SADET scans every log file under
// Logs_Intermediates for lines matching the configured error pattern and
// records the hits so the receiving site knows what it inherits.
//
// Known-benign lines (for example the "Error Rate" sequencing metric) are
// filtered out with glob patterns from the site configuration. Log files are
// selected by file-name globs, defaulting to *.log and *stderr*.txt.
//
// A run with zero matching log files and zero findings is a clean result,
// not an error.
package logscan
