/*
Package config loads and validates the batchcopier configuration.

🎯 Purpose:
- Read the directories, the marker pattern and the schedule from a file
- Validate values and apply defaults
- Check that the configured directories exist

🔄 Flow:
 1. Read picks a Parser by file extension (.yaml/.yml, .json, .hcl)
 2. Command line flags may override values
 3. Validate cleans paths, applies defaults and compiles the patterns
 4. CheckDirectories warns about missing directories without failing

🔍 Example (YAML):

	input: /data/in
	target: /data/out
	backup: /data/backup
	pattern: 'run\.\d{3}\.ok'
	ignore_patterns:
	  - "*.part"
	initial_delay: 10s
	interval: 5s

🔍 Example (HCL):

	input   = "${env.DATA_DIR}/in"
	target  = "${env.DATA_DIR}/out"
	backup  = "${env.DATA_DIR}/backup"
	pattern = "run\\.\\d{3}\\.ok"
*/
package config
