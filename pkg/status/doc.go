/*
Package status tracks what a publish run did to each destination file.

	+-------------+      +--------------+
	| materialize | ---> |   Manager    |
	+-------------+      | (checksums)  |
	                     +------+-------+
	                            |
	              +-------------+------------+
	              |                          |
	        +-----+------+            +------+------+
	        | atomic I/O |            |  Formatter  |
	        +------------+            +-------------+

🎯 Purpose:
- Decide new / modified / unchanged by comparing SHA-256 checksums
- Write generated files (the sites index) atomically
- Best-effort deletes for the clean step
- Summaries for the console
*/
package status
